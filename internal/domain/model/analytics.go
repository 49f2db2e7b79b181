package model

// Analytics — сводная статистика каталога.
type Analytics struct {
	RealCount  int
	FakeCount  int
	TotalCount int
	// Daily — разбивка по дням регистрации (UTC), по возрастанию даты
	Daily []DailyCount
}

// DailyCount — количество зарегистрированных продуктов за день.
type DailyCount struct {
	// Date — дата в формате YYYY-MM-DD
	Date  string
	Count int
	Real  int
	Fake  int
}
