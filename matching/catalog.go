package matching

import (
	"sort"

	"pricecompare/models"
)

// CatalogStore доступ движка сопоставления к каталогу.
// Передается в MatchEngine явно, чтобы тесты могли подставить
// реализацию в памяти вместо настоящей БД.
type CatalogStore interface {
	// UnassignedListings карточки без мастера или без варианта
	UnassignedListings() ([]*models.Listing, error)

	// Masters все мастера каталога в порядке создания
	Masters() ([]*models.MasterProduct, error)

	// MasterByID мастер по id; (nil, nil) если мастер не существует
	MasterByID(id int64) (*models.MasterProduct, error)

	// CreateMaster сохраняет нового мастера и проставляет ему ID
	CreateMaster(m *models.MasterProduct) error

	// VariantByCapacity вариант мастера по объему; (nil, nil) если нет
	VariantByCapacity(masterID int64, capacity string) (*models.Variant, error)

	// CreateVariant сохраняет новый вариант и проставляет ему ID
	CreateVariant(v *models.Variant) error

	// AssignListing ставит привязку карточки в очередь на запись.
	// Привязки фиксируются пачками через Commit.
	AssignListing(listingID, masterID, variantID int64) error

	// Commit фиксирует накопленные привязки. При ошибке пачка
	// откатывается целиком, ранее зафиксированные пачки не трогаются.
	Commit() error

	// ResetCatalog снимает все привязки и удаляет всех мастеров
	// и варианты. Используется только полной пересборкой.
	ResetCatalog() error
}

// MemoryCatalog реализация CatalogStore в памяти.
// Используется в тестах и как каталог для разовых прогонов без БД.
type MemoryCatalog struct {
	listings   map[int64]*models.Listing
	masters    map[int64]*models.MasterProduct
	variants   map[int64]*models.Variant
	nextMaster int64
	nextVar    int64
}

// NewMemoryCatalog создает пустой каталог в памяти
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		listings:   make(map[int64]*models.Listing),
		masters:    make(map[int64]*models.MasterProduct),
		variants:   make(map[int64]*models.Variant),
		nextMaster: 1,
		nextVar:    1,
	}
}

// AddListing кладет карточку в каталог
func (c *MemoryCatalog) AddListing(l *models.Listing) {
	c.listings[l.ID] = l
}

// Listing возвращает карточку по id (для проверок в тестах)
func (c *MemoryCatalog) Listing(id int64) *models.Listing {
	return c.listings[id]
}

// UnassignedListings карточки без мастера или без варианта
func (c *MemoryCatalog) UnassignedListings() ([]*models.Listing, error) {
	var result []*models.Listing
	for _, l := range c.listings {
		if l.MasterProductID == 0 || l.VariantID == 0 {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Masters все мастера в порядке создания
func (c *MemoryCatalog) Masters() ([]*models.MasterProduct, error) {
	result := make([]*models.MasterProduct, 0, len(c.masters))
	for _, m := range c.masters {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MasterByID мастер по id, nil если не существует
func (c *MemoryCatalog) MasterByID(id int64) (*models.MasterProduct, error) {
	return c.masters[id], nil
}

// CreateMaster сохраняет мастера и выдает ему ID
func (c *MemoryCatalog) CreateMaster(m *models.MasterProduct) error {
	m.ID = c.nextMaster
	c.nextMaster++
	c.masters[m.ID] = m
	return nil
}

// VariantByCapacity вариант мастера по объему, nil если нет
func (c *MemoryCatalog) VariantByCapacity(masterID int64, capacity string) (*models.Variant, error) {
	for _, v := range c.variants {
		if v.MasterProductID == masterID && v.Capacity == capacity {
			return v, nil
		}
	}
	return nil, nil
}

// CreateVariant сохраняет вариант и выдает ему ID
func (c *MemoryCatalog) CreateVariant(v *models.Variant) error {
	v.ID = c.nextVar
	c.nextVar++
	c.variants[v.ID] = v
	return nil
}

// AssignListing привязывает карточку к мастеру и варианту.
// В памяти запись применяется сразу, Commit ничего не делает.
func (c *MemoryCatalog) AssignListing(listingID, masterID, variantID int64) error {
	if l, ok := c.listings[listingID]; ok {
		l.MasterProductID = masterID
		l.VariantID = variantID
	}
	return nil
}

// Commit фиксирует пачку привязок (в памяти — no-op)
func (c *MemoryCatalog) Commit() error {
	return nil
}

// ResetCatalog снимает привязки и удаляет мастеров с вариантами
func (c *MemoryCatalog) ResetCatalog() error {
	for _, l := range c.listings {
		l.MasterProductID = 0
		l.VariantID = 0
	}
	c.masters = make(map[int64]*models.MasterProduct)
	c.variants = make(map[int64]*models.Variant)
	return nil
}

// MasterCount число мастеров (для проверок в тестах)
func (c *MemoryCatalog) MasterCount() int {
	return len(c.masters)
}

// VariantCount число вариантов (для проверок в тестах)
func (c *MemoryCatalog) VariantCount() int {
	return len(c.variants)
}
