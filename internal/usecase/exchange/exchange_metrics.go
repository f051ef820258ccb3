package exchange

import (
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	exchangedto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/exchange"
)

// recordAdmissionMetrics - вызывается после каждого решения
func (uc *DefaultExchangeUsecase) recordAdmissionMetrics(input *exchangedto.AdmitInput, admission *domain.Admission, err error, elapsed time.Duration) {
	if uc.Metrics == nil || input == nil {
		return
	}

	source := ""
	if input.SourceBot != nil {
		source = input.SourceBot.CurrencyCode
	}
	destination := domain.NormalizeCurrency(input.ExchangeTo)

	outcome := "failed"
	if err == nil && admission != nil {
		outcome = string(admission.Outcome)
	}
	// неизвестные валюты не попадают в метки
	if admission != nil && admission.Outcome == domain.OutcomeInvalid {
		destination = ""
	}

	uc.Metrics.RecordAdmission(source, destination, outcome, elapsed.Seconds())

	if admission == nil {
		return
	}
	switch admission.Outcome {
	case domain.OutcomeApproved:
		uc.Metrics.RecordAdmitted(destination, admission.Transaction.AmountDiscoin.InexactFloat64())
	case domain.OutcomeDeclined:
		uc.Metrics.RecordLimitDecline(destination, admission.Reason)
	}
}
