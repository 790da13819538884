package workflow

// Коды встроенной (закрытой) воронки.
const (
	CodeNew        = "NEW"
	CodeInProgress = "IN_PROGRESS"
	CodeRecontact  = "RECONTACT"
	CodeWon        = "WON"
	CodeLost       = "LOST"
	CodeClose      = "CLOSE"
)

// closedTransitions — фиксированный граф допустимых переходов для
// встроенной воронки. Терминальные статусы (WON, LOST, CLOSE) не имеют
// исходящих рёбер: из них нельзя перейти никуда, включая повторное
// бросание карточки в ту же колонку.
var closedTransitions = map[string][]string{
	CodeNew:        {CodeInProgress, CodeLost},
	CodeInProgress: {CodeRecontact, CodeWon, CodeLost},
	CodeRecontact:  {CodeInProgress, CodeWon, CodeLost},
	CodeWon:        {},
	CodeLost:       {},
	CodeClose:      {},
}

// Decision — результат проверки перехода.
type Decision struct {
	Allowed              bool
	RequiresConfirmation bool
}

// IsOpenTaxonomy определяет режим воронки. Система выросла из
// фиксированной 6-статусной воронки; как только организация заводит
// собственные статусы (код вне встроенного графа), воронка считается
// открытой и любой переход между различными статусами разрешён.
func IsOpenTaxonomy(taxonomy []StatusDefinition) bool {
	for _, s := range taxonomy {
		if _, known := closedTransitions[s.Code]; !known {
			return true
		}
	}
	return false
}

// IsAllowed — чистая функция политики переходов. Переход "сам в себя"
// запрещён в обоих режимах; в открытом режиме любой другой переход
// разрешён, но всегда требует подтверждения.
func IsAllowed(fromCode, toCode string, taxonomy []StatusDefinition) Decision {
	if fromCode == toCode {
		return Decision{Allowed: false}
	}

	if IsOpenTaxonomy(taxonomy) {
		return Decision{Allowed: true, RequiresConfirmation: true}
	}

	edges, known := closedTransitions[fromCode]
	if !known {
		return Decision{Allowed: false}
	}
	for _, edge := range edges {
		if edge == toCode {
			return Decision{Allowed: true, RequiresConfirmation: true}
		}
	}
	return Decision{Allowed: false}
}

// IsTerminal: из статуса нет исходящих переходов в закрытом графе.
func IsTerminal(code string) bool {
	edges, known := closedTransitions[code]
	return known && len(edges) == 0
}

// IsNegativeOutcome: целевой статус — негативный исход, подтверждение
// показывается в "опасном" варианте.
func IsNegativeOutcome(code string) bool {
	return code == CodeLost
}
