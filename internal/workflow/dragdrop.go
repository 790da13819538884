package workflow

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// ActivationDistance — порог в пикселях, после которого жест считается
// перетаскиванием, а не кликом.
const ActivationDistance = 8.0

type Point struct {
	X float64
	Y float64
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

type dragState struct {
	requestID string
	origin    Point
	activated bool
}

// DragDropController переводит жесты указателя в намерения перехода:
// применяет порог активации, разрешает исходный и целевой статусы и
// прогоняет пару через политику переходов.
type DragDropController struct {
	taxonomy *StatusTaxonomyStore
	store    *RequestEntityStore
	gate     *ConfirmationGate
	logger   *zap.Logger

	// Клик (жест ниже порога активации) открывает карточку заявки.
	onOpenDetail func(requestID string)

	// Отклонение политикой раньше глоталось молча; теперь оно
	// дополнительно отдаётся наружу (тост и т.п.).
	onRejected func(*TransitionRejectedError)

	active *dragState
}

func NewDragDropController(taxonomy *StatusTaxonomyStore, store *RequestEntityStore, gate *ConfirmationGate, logger *zap.Logger) *DragDropController {
	return &DragDropController{
		taxonomy: taxonomy,
		store:    store,
		gate:     gate,
		logger:   logger,
	}
}

func (d *DragDropController) OnOpenDetail(fn func(requestID string)) { d.onOpenDetail = fn }

func (d *DragDropController) OnRejected(fn func(*TransitionRejectedError)) { d.onRejected = fn }

// Begin фиксирует нажатие на карточке. Намерение перехода ещё не создано.
func (d *DragDropController) Begin(requestID string, origin Point) {
	d.active = &dragState{requestID: requestID, origin: origin}
}

// Move активирует перетаскивание, когда указатель ушёл от точки нажатия
// дальше порога. До этого жест остаётся потенциальным кликом.
func (d *DragDropController) Move(to Point) {
	if d.active == nil || d.active.activated {
		return
	}
	if distance(d.active.origin, to) >= ActivationDistance {
		d.active.activated = true
	}
}

// Cancel — указатель отпущен вне зоны сброса; намерение отбрасывается.
func (d *DragDropController) Cancel() {
	d.active = nil
}

// Drop завершает жест над колонкой targetStatusID.
//   - жест не активировался — это клик, открываем карточку;
//   - та же колонка — молча завершаем, ни одного сетевого вызова;
//   - политика запретила — предупреждение в лог и колбэк наружу;
//   - разрешено — предлагаем переход воротам подтверждения.
func (d *DragDropController) Drop(targetStatusID uint64) error {
	state := d.active
	d.active = nil

	if state == nil {
		return nil
	}

	if !state.activated {
		if d.onOpenDetail != nil {
			d.onOpenDetail(state.requestID)
		}
		return nil
	}

	request, ok := d.store.Get(state.requestID)
	if !ok {
		return ErrRequestNotFound
	}

	target, ok := d.taxonomy.ByID(targetStatusID)
	if !ok {
		return ErrStatusNotFound
	}

	if request.Status.Code == target.Code {
		return nil
	}

	decision := IsAllowed(request.Status.Code, target.Code, d.taxonomy.Snapshot())
	if !decision.Allowed {
		rejected := &TransitionRejectedError{
			RequestID: request.ID,
			FromCode:  request.Status.Code,
			ToCode:    target.Code,
		}
		d.logger.Warn("DragDropController: переход отклонён политикой",
			zap.String("requestID", request.ID),
			zap.String("from", request.Status.Code),
			zap.String("to", target.Code),
		)
		if d.onRejected != nil {
			d.onRejected(rejected)
		}
		return nil
	}

	d.gate.Propose(request, target)
	return nil
}

// TransitionPrompt — предлагаемый переход, ожидающий явного
// подтверждения человеком.
type TransitionPrompt struct {
	RequestID    string
	RequestTitle string
	FromLabel    string
	ToLabel      string
	Target       StatusRef
	// "danger" для негативного исхода, иначе "default".
	// Влияет только на оформление, не на валидацию.
	Variant string
}

// ConfirmationGate — синхронный человеческий шаг между "переход задуман"
// и "переход зафиксирован".
type ConfirmationGate struct {
	coordinator *OptimisticMutationCoordinator
	logger      *zap.Logger

	prompt  *TransitionPrompt
	loading bool
}

func NewConfirmationGate(coordinator *OptimisticMutationCoordinator, logger *zap.Logger) *ConfirmationGate {
	return &ConfirmationGate{coordinator: coordinator, logger: logger}
}

func (g *ConfirmationGate) Propose(request Request, target StatusDefinition) {
	variant := "default"
	if IsNegativeOutcome(target.Code) {
		variant = "danger"
	}

	fromLabel := request.Status.Name
	toLabel := target.Label
	if toLabel == "" {
		toLabel = target.Name
	}

	g.prompt = &TransitionPrompt{
		RequestID:    request.ID,
		RequestTitle: request.Title(),
		FromLabel:    fromLabel,
		ToLabel:      toLabel,
		Target:       StatusRef{ID: target.ID, Code: target.Code, Name: target.Name},
		Variant:      variant,
	}
}

// Prompt — текущий ожидающий переход (nil, если ворота закрыты).
func (g *ConfirmationGate) Prompt() *TransitionPrompt { return g.prompt }

// Loading — мутация в полёте, повторные подтверждения блокируются.
func (g *ConfirmationGate) Loading() bool { return g.loading }

// Confirm передаёт переход координатору. До завершения мутации ворота
// заблокированы флагом loading — повторный клик не породит второй вызов.
func (g *ConfirmationGate) Confirm(ctx context.Context) error {
	if g.prompt == nil {
		return ErrNoPendingPrompt
	}
	if g.loading {
		return ErrMutationInFlight
	}

	g.loading = true
	defer func() { g.loading = false }()

	err := g.coordinator.Commit(ctx, g.prompt.RequestID, g.prompt.Target)
	g.prompt = nil
	return err
}

// Cancel отбрасывает намерение: ни мутации, ни сетевого вызова,
// карточка возвращается в исходную колонку.
func (g *ConfirmationGate) Cancel() {
	if g.loading {
		return
	}
	g.prompt = nil
}
