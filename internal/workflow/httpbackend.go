package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Фиксированный таймаут сетевого слоя. Истечение таймаута ничем не
// отличается от любой другой сетевой ошибки.
const defaultRequestTimeout = 15 * time.Second

// HeaderFactory — фабрика заголовков от внешнего слоя аутентификации
// (bearer-токен, идентификатор организации). Движок её только вызывает.
type HeaderFactory func() http.Header

// HTTPBackend — боевая реализация Backend поверх REST-поверхности
// /api/v1/requests-information.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
	headers HeaderFactory
	logger  *zap.Logger
}

func NewHTTPBackend(baseURL string, headers HeaderFactory, logger *zap.Logger) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
		headers: headers,
		logger:  logger,
	}
}

// envelope — стандартный конверт ответа сервера.
type envelope struct {
	Status  bool            `json:"status"`
	Body    json.RawMessage `json:"body"`
	Message string          `json:"message"`
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, payload interface{}) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if b.headers != nil {
		for key, values := range b.headers() {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("неожиданный формат ответа сервера: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		return nil, fmt.Errorf("сервер ответил ошибкой (HTTP %d): %s", resp.StatusCode, env.Message)
	}
	return env.Body, nil
}

func (b *HTTPBackend) FetchTaxonomy(ctx context.Context) ([]StatusDefinition, error) {
	body, err := b.do(ctx, http.MethodGet, "/requests-information/status", nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Status []StatusDefinition `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("неожиданный формат справочника статусов: %w", err)
	}
	return parsed.Status, nil
}

func (b *HTTPBackend) FetchRequests(ctx context.Context, filter ListFilter) ([]Request, error) {
	params := url.Values{}
	limit := filter.Limit
	if limit <= 0 {
		limit = 999
	}
	params.Set("limit", strconv.Itoa(limit))
	if filter.From != nil {
		params.Set("from", filter.From.Format(time.RFC3339))
	}
	if filter.To != nil {
		params.Set("to", filter.To.Format(time.RFC3339))
	}

	body, err := b.do(ctx, http.MethodGet, "/requests-information?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	// Сервер отдаёт либо массив, либо объект {list: [...]}.
	var direct []Request
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}
	var wrapped struct {
		List []Request `json:"list"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.List != nil {
		return wrapped.List, nil
	}
	return nil, fmt.Errorf("неожиданный формат списка заявок")
}

func (b *HTTPBackend) FetchSummary(ctx context.Context) (Summary, error) {
	body, err := b.do(ctx, http.MethodGet, "/requests-information/summary", nil)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	if err := json.Unmarshal(body, &summary); err != nil {
		return Summary{}, fmt.Errorf("неожиданный формат сводки: %w", err)
	}
	return summary, nil
}

func (b *HTTPBackend) MutateStatus(ctx context.Context, requestID string, status StatusRef) error {
	payload := map[string]interface{}{"status_code": status.Code}
	_, err := b.do(ctx, http.MethodPatch, "/requests-information/"+url.PathEscape(requestID)+"/status", payload)
	if err != nil {
		b.logger.Warn("HTTPBackend: запрос на смену статуса не удался",
			zap.String("requestID", requestID),
			zap.String("status_code", status.Code),
			zap.Error(err),
		)
	}
	return err
}

func (b *HTTPBackend) ReorderStatus(ctx context.Context, statusID uint64, sort int) error {
	payload := map[string]interface{}{"sort": sort}
	_, err := b.do(ctx, http.MethodPatch, "/requests-information/status/"+strconv.FormatUint(statusID, 10), payload)
	return err
}
