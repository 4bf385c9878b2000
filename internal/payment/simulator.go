// Package payment builds the instructions shown on the simulated Pix and card
// screens. No money moves; an employee confirms the payment at the table.
package payment

import (
	"fmt"
	"strings"

	"github.com/gestfood/digital-menu/pkg/config"
	"github.com/shopspring/decimal"
)

const (
	defaultMerchantName    = "Restaurante GestFood"
	defaultMerchantCity    = "SAO PAULO"
	defaultPixKey          = "123.456.789-09"
	defaultMaxInstallments = 6

	cardNotice = "Aguarde, um funcionário levará a maquininha até a sua mesa."
)

// PixCharge is the content of the Pix screen.
type PixCharge struct {
	MerchantName    string          `json:"merchantName"`
	PixKey          string          `json:"pixKey"`
	Amount          decimal.Decimal `json:"amount"`
	FormattedAmount string          `json:"formattedAmount"`
	Payload         string          `json:"payload"`
}

// Installment is one card installment option.
type Installment struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
	Label  string          `json:"label"`
}

// CardInstructions is the content of the card screen.
type CardInstructions struct {
	Installments []Installment `json:"installments"`
	Notice       string        `json:"notice"`
}

// Simulator produces payment instructions for a merchant.
type Simulator struct {
	merchantName    string
	merchantCity    string
	pixKey          string
	maxInstallments int
}

func NewSimulator(cfg config.PaymentConfig) *Simulator {
	s := &Simulator{
		merchantName:    strings.TrimSpace(cfg.MerchantName),
		merchantCity:    strings.TrimSpace(cfg.MerchantCity),
		pixKey:          strings.TrimSpace(cfg.PixKey),
		maxInstallments: cfg.MaxInstallments,
	}
	if s.merchantName == "" {
		s.merchantName = defaultMerchantName
	}
	if s.merchantCity == "" {
		s.merchantCity = defaultMerchantCity
	}
	if s.pixKey == "" {
		s.pixKey = defaultPixKey
	}
	if s.maxInstallments <= 0 {
		s.maxInstallments = defaultMaxInstallments
	}
	return s
}

// NewPixCharge builds the Pix instructions for amount. The copy-and-paste
// payload is a fixed demo template carrying the amount and merchant name.
func (s *Simulator) NewPixCharge(amount decimal.Decimal) PixCharge {
	amount = amount.Round(2)
	return PixCharge{
		MerchantName:    s.merchantName,
		PixKey:          s.pixKey,
		Amount:          amount,
		FormattedAmount: FormatBRL(amount),
		Payload:         pixPayload(amount, s.merchantName, s.merchantCity),
	}
}

// CardInstructions lists the installment options for amount.
func (s *Simulator) CardInstructions(amount decimal.Decimal) CardInstructions {
	installments := make([]Installment, 0, s.maxInstallments)
	for count := 1; count <= s.maxInstallments; count++ {
		each := amount.Div(decimal.NewFromInt(int64(count))).Round(2)
		label := fmt.Sprintf("%dx de %s", count, FormatBRL(each))
		if count == 1 {
			label = fmt.Sprintf("À vista %s", FormatBRL(amount))
		}
		installments = append(installments, Installment{Count: count, Amount: each, Label: label})
	}
	return CardInstructions{Installments: installments, Notice: cardNotice}
}

func pixPayload(amount decimal.Decimal, merchant, city string) string {
	return "00020126580014BR.GOV.BCB.PIX0136123e4567-e12b-12d1-a456-426614174000" +
		"52040000" +
		"5303986" +
		"5406" + amount.StringFixed(2) +
		"5802BR" +
		"5925" + merchant +
		"6009" + city +
		"62170515RP123456789-09" +
		"6304"
}
