package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestAccountExchangeCode(t *testing.T) {
	real := Account{MarketCode: "binance"}
	if got := real.ExchangeCode(); got != "binance" {
		t.Fatalf("ExchangeCode() = %q, want binance", got)
	}

	paper := Account{MarketCode: "paper_trading", Exchange: "Paper trading account"}
	if got := paper.ExchangeCode(); got != "binance" {
		t.Fatalf("paper ExchangeCode() = %q, want binance", got)
	}
}

func TestFatalErrorPredicatesSeeWrappedErrors(t *testing.T) {
	mandatory := fmt.Errorf("CreateBot: %w",
		&APIError{Status: 422, Code: "record_invalid", Msg: "Mandatory attribute missing: account_id"})
	if !IsMandatoryMissing(mandatory) {
		t.Error("mandatory-attribute error not detected through the wrap")
	}

	notFound := fmt.Errorf("GetAccount: %w",
		&APIError{Status: 404, Code: "not_found", Msg: "Not Found"})
	if !IsAccountNotFound(notFound) {
		t.Error("account-not-found error not detected through the wrap")
	}

	if IsMandatoryMissing(errors.New("connection reset")) || IsAccountNotFound(errors.New("connection reset")) {
		t.Error("transient error misclassified as fatal")
	}
}
