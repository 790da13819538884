package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound   = errors.New("заявка не найдена в локальном хранилище")
	ErrNoPendingPrompt   = errors.New("нет ожидающего подтверждения перехода")
	ErrMutationInFlight  = errors.New("мутация уже выполняется, повторное подтверждение игнорируется")
	ErrReorderInFlight   = errors.New("предыдущая перестановка колонок ещё не завершена")
	ErrStatusNotFound    = errors.New("статус не найден в справочнике")
	ErrTaxonomyNotLoaded = errors.New("справочник статусов ещё не загружен")
)

// TaxonomyFetchError: загрузка справочника не удалась; ранее загруженные
// данные при этом сохраняются.
type TaxonomyFetchError struct {
	Err error
}

func (e *TaxonomyFetchError) Error() string {
	return fmt.Sprintf("не удалось загрузить справочник статусов: %v", e.Err)
}

func (e *TaxonomyFetchError) Unwrap() error { return e.Err }

// MutationFailedError: удалённое изменение статуса не удалось,
// оптимистичные правки откачены.
type MutationFailedError struct {
	RequestID string
	Err       error
}

func (e *MutationFailedError) Error() string {
	return fmt.Sprintf("не удалось изменить статус заявки %s: %v", e.RequestID, e.Err)
}

func (e *MutationFailedError) Unwrap() error { return e.Err }

// TransitionRejectedError: политика переходов запретила перемещение.
type TransitionRejectedError struct {
	RequestID string
	FromCode  string
	ToCode    string
}

func (e *TransitionRejectedError) Error() string {
	return fmt.Sprintf("переход заявки %s из %q в %q запрещён", e.RequestID, e.FromCode, e.ToCode)
}
