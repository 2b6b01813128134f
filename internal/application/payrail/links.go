package payrail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
)

const (
	defaultCurrency = "INR"
	qrImageSize     = 256
)

// CreatePaymentLink builds an active UPI link and a QR code of the same URI
func (e *Emulator) CreatePaymentLink(ctx context.Context, req CreateLinkRequest) (*PaymentLink, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	if !validAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if req.ExpiresInMinutes < 0 {
		return nil, ErrInvalidExpiry
	}
	ttl := e.cfg.LinkTTL
	if req.ExpiresInMinutes > 0 {
		ttl = time.Duration(req.ExpiresInMinutes) * time.Minute
	}

	now := e.now()
	link := PaymentLink{
		ID:         "plink_" + uuid.NewString(),
		Amount:     req.Amount,
		Currency:   currency,
		Purpose:    req.Purpose,
		CustomerID: req.CustomerID,
		ExpiresAt:  now.Add(ttl),
		Status:     LinkStatusActive,
		CreatedAt:  now,
	}
	link.PayURI = e.payURI(link)

	png, err := qrcode.Encode(link.PayURI, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("payrail: failed to encode QR code: %w", err)
	}
	link.QRImageURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	e.mu.Lock()
	e.links[link.ID] = &linkEntry{link: link}
	e.mu.Unlock()

	e.metrics.PaymentLinkCreated()
	logger.WithLogger(ctx, e.logger).Info("Payment link created",
		zap.String("link_id", link.ID),
		zap.String("amount", link.Amount.StringFixed(2)),
		zap.Time("expires_at", link.ExpiresAt),
	)

	return link.clone(), nil
}

// GetPaymentLink returns a snapshot of a link. An active link past its expiry
// is moved to expired here; nothing expires links in the background.
func (e *Emulator) GetPaymentLink(ctx context.Context, id string) (*PaymentLink, error) {
	entry, ok := e.getLinkEntry(id)
	if !ok {
		return nil, ErrLinkNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	e.expireIfDue(&entry.link)
	return entry.link.clone(), nil
}

// expireIfDue must be called with the link entry locked
func (e *Emulator) expireIfDue(link *PaymentLink) {
	if link.Status == LinkStatusActive && link.IsExpiredAt(e.now()) {
		link.Status = LinkStatusExpired
	}
}

// payURI renders upi://pay with parameters in the order payer apps expect
func (e *Emulator) payURI(link PaymentLink) string {
	params := []struct{ key, value string }{
		{"pa", e.cfg.MerchantHandle},
		{"pn", e.cfg.MerchantName},
		{"am", link.Amount.StringFixed(2)},
		{"cu", link.Currency},
		{"tn", link.Purpose},
		{"tr", link.ID},
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.key+"="+url.QueryEscape(p.value))
	}
	return "upi://pay?" + strings.Join(parts, "&")
}

func normalizeCurrency(currency string) (string, error) {
	if currency == "" {
		return defaultCurrency, nil
	}
	currency = strings.ToUpper(currency)
	if len(currency) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return currency, nil
}
