// Пакет rbac — роли verisure и маппинг групп IdP в роль.
// У субъекта одна итоговая роль — максимальная из совпавших.
package rbac

// Роли в порядке возрастания привилегий.
const (
	RoleCustomer     = "customer"
	RoleManufacturer = "manufacturer"
	RoleAdmin        = "admin"
)

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleCustomer:     1,
	RoleManufacturer: 2,
	RoleAdmin:        3,
}

// GroupMapping — группы IdP для каждой роли.
type GroupMapping struct {
	Admin        []string
	Manufacturer []string
	Customer     []string
}

// maxRole возвращает роль с максимальными привилегиями из двух.
func maxRole(a, b string) string {
	if roleWeight[a] >= roleWeight[b] {
		return a
	}
	return b
}

// HighestRole возвращает максимальную роль из набора.
// Неизвестные роли игнорируются. Если допустимых ролей нет — пустая строка.
func HighestRole(roles []string) string {
	highest := ""
	for _, r := range roles {
		if !IsValidRole(r) {
			continue
		}
		highest = maxRole(highest, r)
	}
	return highest
}

// MapGroupsToRole определяет роль пользователя по группам IdP.
// Если ни одна группа не совпала — возвращает пустую строку.
func MapGroupsToRole(groups []string, mapping GroupMapping) string {
	adminSet := toSet(mapping.Admin)
	manufacturerSet := toSet(mapping.Manufacturer)
	customerSet := toSet(mapping.Customer)

	var roles []string
	for _, g := range groups {
		if adminSet[g] {
			roles = append(roles, RoleAdmin)
		}
		if manufacturerSet[g] {
			roles = append(roles, RoleManufacturer)
		}
		if customerSet[g] {
			roles = append(roles, RoleCustomer)
		}
	}

	return HighestRole(roles)
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// toSet конвертирует срез строк в map для быстрого поиска.
func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, item := range items {
		s[item] = true
	}
	return s
}
