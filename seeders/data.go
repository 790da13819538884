package seeders

// Встроенная воронка продаж. Переходы между этими кодами проверяет
// закрытый граф политики; организации со своими статусами получают
// открытый граф.
var statusesData = []struct {
	Code      string
	Name      string
	Label     string
	Color     string
	Sort      int
	IsDefault bool
}{
	{Code: "NEW", Name: "Nuevos", Label: "Новые", Color: "#64748b", Sort: 1, IsDefault: true},
	{Code: "IN_PROGRESS", Name: "En Proceso", Label: "В работе", Color: "#3b82f6", Sort: 2},
	{Code: "RECONTACT", Name: "Recontactar", Label: "Повторный контакт", Color: "#eab308", Sort: 3},
	{Code: "WON", Name: "Ganados", Label: "Выиграны", Color: "#22c55e", Sort: 4},
	{Code: "LOST", Name: "Perdidos", Label: "Проиграны", Color: "#ef4444", Sort: 5},
	{Code: "CLOSE", Name: "Cerrados", Label: "Закрыты", Color: "#6b7280", Sort: 6},
}
