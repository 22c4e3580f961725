package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"app/internal/usecase"
)

// GoogleVerifier はGoogleログインのIDトークンを検証して
// メール・名前を取り出す。
type GoogleVerifier struct {
	ClientID string
	client   *http.Client
}

// DI
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID: clientID,
		client:   http.DefaultClient,
	}
}

// フロントから渡されたIDトークンをGoogleのtokeninfoで検証する。
// audが自分のClient IDであることも確認する（他アプリ向けのトークンは拒否）。
func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (usecase.FederatedUser, error) {
	url := "https://oauth2.googleapis.com/tokeninfo?id_token=" + idToken

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return usecase.FederatedUser{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return usecase.FederatedUser{}, fmt.Errorf("sending verification request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return usecase.FederatedUser{}, errors.New("invalid token")
	}

	var tokenInfo struct {
		Aud   string `json:"aud"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		return usecase.FederatedUser{}, fmt.Errorf("decoding response: %w", err)
	}

	//このトークンが自分のアプリ向けに発行されたか確認
	if tokenInfo.Aud != g.ClientID {
		return usecase.FederatedUser{}, errors.New("token was not issued for this application")
	}

	return usecase.FederatedUser{
		Email: tokenInfo.Email,
		Name:  tokenInfo.Name,
	}, nil
}
