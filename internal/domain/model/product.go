// Пакет model — доменные модели verisure.
package model

import "time"

// Product — запись о продукте в каталоге.
// Каталог является источником истины; реестр (ledger) лишь зеркалирует записи.
type Product struct {
	// ID — UUID записи в каталоге
	ID string
	// ProductID — идентификатор продукта, назначенный производителем
	ProductID string
	// Name — отображаемое имя продукта
	Name string
	// QRToken — полезная нагрузка QR-кода. Генерируется один раз при регистрации
	// и больше не меняется, иначе напечатанные коды перестанут работать.
	QRToken string
	// IsFake — признак подделки. Переход только false → true.
	IsFake bool
	// CreatedAt, UpdatedAt — назначаются хранилищем
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status возвращает текстовый статус подлинности.
func (p *Product) Status() string {
	if p.IsFake {
		return StatusFake
	}
	return StatusAuthentic
}

// Статусы подлинности.
const (
	StatusAuthentic = "authentic"
	StatusFake      = "fake"
)

// ProductStat — проекция записи для агрегатной статистики.
type ProductStat struct {
	IsFake    bool
	CreatedAt time.Time
}
