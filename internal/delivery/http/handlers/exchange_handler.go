package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/LavaJover/shvark-exchange-service/internal/delivery/http/dto"
	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/usecase"
	exchangedto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/exchange"
	"github.com/LavaJover/shvark-exchange-service/internal/usecase/exchange"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 16

// ExchangeHandler serves the bot-facing JSON API.
type ExchangeHandler struct {
	exchangeUc exchange.ExchangeUsecase
	botUc      usecase.BotUsecase
	validate   *validator.Validate
	router     *http.ServeMux
}

func NewExchangeHandler(exchangeUc exchange.ExchangeUsecase, botUc usecase.BotUsecase) *ExchangeHandler {
	h := &ExchangeHandler{
		exchangeUc: exchangeUc,
		botUc:      botUc,
		validate:   validator.New(),
		router:     http.NewServeMux(),
	}
	h.routes()
	return h
}

func (h *ExchangeHandler) routes() {
	h.router.Handle("POST /transaction", h.authenticated(h.createTransaction))
	h.router.Handle("GET /transactions", h.authenticated(h.listTransactions))
	h.router.Handle("GET /transactions/{receipt}", h.authenticated(h.getTransaction))
	h.router.Handle("POST /transactions/{receipt}/process", h.authenticated(h.processTransaction))
	h.router.HandleFunc("GET /rates", h.showRates)
}

// Handle mounts an extra handler, e.g. /metrics.
func (h *ExchangeHandler) Handle(pattern string, handler http.Handler) {
	h.router.Handle(pattern, handler)
}

func (h *ExchangeHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(rw, r)
}

// authenticated resolves the calling bot from its API key.
func (h *ExchangeHandler) authenticated(next func(rw http.ResponseWriter, r *http.Request, bot *domain.Bot)) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		bot, err := h.botUc.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				writeJSON(rw, http.StatusUnauthorized, dto.NewError(domain.ErrUnauthorized.Error()))
				return
			}
			slog.Error("failed to authenticate bot", "error", err)
			writeJSON(rw, http.StatusInternalServerError, dto.NewError("internal error"))
			return
		}
		next(rw, r, bot)
	})
}

func (h *ExchangeHandler) createTransaction(rw http.ResponseWriter, r *http.Request, bot *domain.Bot) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(rw, http.StatusBadRequest, dto.NewError(domain.MsgBadPost))
		return
	}

	var request dto.TransactionRequest
	if err := json.Unmarshal(body, &request); err != nil {
		writeJSON(rw, http.StatusBadRequest, dto.NewError(domain.MsgBadPost))
		return
	}
	if err := h.validate.Struct(&request); err != nil {
		writeJSON(rw, http.StatusBadRequest, dto.NewError(domain.MsgBadPost))
		return
	}

	admission, err := h.exchangeUc.Admit(r.Context(), &exchangedto.AdmitInput{
		SourceBot:   bot,
		RequesterID: string(request.User),
		Amount:      string(request.Amount),
		ExchangeTo:  request.ExchangeTo,
		Type:        request.Type,
	})
	if err != nil {
		writeJSON(rw, http.StatusInternalServerError, dto.NewError("internal error"))
		return
	}

	writeAdmission(rw, admission)
}

// writeAdmission maps the decision onto the wire contract.
func writeAdmission(rw http.ResponseWriter, admission *domain.Admission) {
	switch admission.Outcome {
	case domain.OutcomeApproved:
		writeJSON(rw, http.StatusOK, dto.ApprovedResponse{
			Status:       string(domain.OutcomeApproved),
			Receipt:      admission.Receipt,
			LimitNow:     admission.LimitNow.InexactFloat64(),
			ResultAmount: admission.ResultAmount.InexactFloat64(),
		})
	case domain.OutcomeDeclined:
		resp := dto.DeclinedResponse{
			Status: string(domain.OutcomeDeclined),
			Reason: admission.Reason,
		}
		if admission.Limit != nil {
			limit := admission.Limit.InexactFloat64()
			resp.Limit = &limit
		}
		writeJSON(rw, http.StatusBadRequest, resp)
	default:
		writeJSON(rw, http.StatusBadRequest, dto.NewError(admission.Message))
	}
}

func (h *ExchangeHandler) listTransactions(rw http.ResponseWriter, r *http.Request, bot *domain.Bot) {
	input := &exchangedto.ListTransactionsInput{
		DestinationCurrency: bot.CurrencyCode,
		OnlyUnprocessed:     r.URL.Query().Get("all") != "true",
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(rw, http.StatusBadRequest, dto.NewError("invalid limit"))
			return
		}
		input.Limit = limit
	}

	output, err := h.exchangeUc.ListTransactions(r.Context(), input)
	if err != nil {
		slog.Error("failed to list transactions", "currency", bot.CurrencyCode, "error", err)
		writeJSON(rw, http.StatusInternalServerError, dto.NewError("internal error"))
		return
	}

	writeJSON(rw, http.StatusOK, dto.TransactionsResponse(output.Transactions))
}

func (h *ExchangeHandler) getTransaction(rw http.ResponseWriter, r *http.Request, _ *domain.Bot) {
	transaction, err := h.exchangeUc.GetTransaction(r.Context(), r.PathValue("receipt"))
	if err != nil {
		slog.Error("failed to get transaction", "error", err)
		writeJSON(rw, http.StatusInternalServerError, dto.NewError("internal error"))
		return
	}
	if transaction == nil {
		writeJSON(rw, http.StatusNotFound, dto.NewError(domain.ErrTransactionNotFound.Error()))
		return
	}

	writeJSON(rw, http.StatusOK, transaction.View())
}

func (h *ExchangeHandler) processTransaction(rw http.ResponseWriter, r *http.Request, bot *domain.Bot) {
	err := h.exchangeUc.MarkProcessed(r.Context(), &exchangedto.MarkProcessedInput{
		Receipt:             r.PathValue("receipt"),
		DestinationCurrency: bot.CurrencyCode,
	})
	switch {
	case err == nil:
		writeJSON(rw, http.StatusOK, map[string]string{"status": "processed"})
	case errors.Is(err, domain.ErrTransactionNotFound):
		writeJSON(rw, http.StatusNotFound, dto.NewError(err.Error()))
	case errors.Is(err, domain.ErrNotDestination):
		writeJSON(rw, http.StatusForbidden, dto.NewError(err.Error()))
	default:
		slog.Error("failed to mark transaction processed", "error", err)
		writeJSON(rw, http.StatusInternalServerError, dto.NewError("internal error"))
	}
}

func (h *ExchangeHandler) showRates(rw http.ResponseWriter, r *http.Request) {
	rates, err := h.botUc.ShowRates(r.Context())
	if err != nil {
		slog.Error("failed to show rates", "error", err)
		http.Error(rw, "internal error", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(http.StatusOK)
	io.WriteString(rw, rates)
}

func writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
