package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"app/internal/usecase"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeのHosted Checkoutを使う決済アダプタ。
// カード情報はStripe側のUIが預かるので、このサーバーは一切触らない。
type StripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

// DI
// secretKeyはstripe-goのグローバルに設定する（プロセスで1つ）。
func NewStripeGateway(secretKey string, webhookSecret string, successURL string, cancelURL string) *StripeGateway {
	stripe.Key = secretKey

	return &StripeGateway{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		currency:      "usd",
	}
}

// カート明細からHosted Checkoutのセッションを作る。
// user_idはmetadataに入れて、完了通知のときに取り出す。
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, userID int64, items []usecase.CheckoutItem) (usecase.CheckoutSession, error) {
	if len(items) == 0 {
		return usecase.CheckoutSession{}, errors.New("no line items")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(g.successURL),
		CancelURL:          stripe.String(g.cancelURL),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatInt(userID, 10))

	for _, it := range items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
				//Stripeは最小通貨単位（セント）で受け取る
				UnitAmount: stripe.Int64(it.UnitPrice * 100),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	s, err := session.New(params)
	if err != nil {
		return usecase.CheckoutSession{}, err
	}

	return toCheckoutSession(s), nil
}

// セッションをStripeから取り直す。
// リダイレクトのクエリは信用せず、必ずこれで支払い状態を確認する。
func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (usecase.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return usecase.CheckoutSession{}, err
	}

	return toCheckoutSession(s), nil
}

// webhookの署名を検証してcheckout.session.completedだけを通す。
// 2番目の戻り値は「処理対象のイベントかどうか」。
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signature string) (usecase.CheckoutSession, bool, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return usecase.CheckoutSession{}, false, err
	}

	if event.Type != "checkout.session.completed" {
		return usecase.CheckoutSession{}, false, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return usecase.CheckoutSession{}, false, err
	}

	return toCheckoutSession(&s), true, nil
}

func toCheckoutSession(s *stripe.CheckoutSession) usecase.CheckoutSession {
	var userID int64
	if s.Metadata != nil {
		if v, ok := s.Metadata["user_id"]; ok {
			userID, _ = strconv.ParseInt(v, 10, 64)
		}
	}

	return usecase.CheckoutSession{
		ID:     s.ID,
		URL:    s.URL,
		Paid:   s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		UserID: userID,
	}
}
