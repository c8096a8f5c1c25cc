package matching

import (
	"fmt"
	"log"
	"strings"
	"time"

	"pricecompare/models"
)

// DefaultMasterThreshold порог привязки карточки к существующему мастеру
const DefaultMasterThreshold = 0.75

// DefaultBatchSize размер пачки фиксации привязок
const DefaultBatchSize = 50

// Веса оценки карточки против мастера: схожесть базовых названий
// и пересечение поисковых токенов
const (
	masterNameWeight  = 0.6
	masterTokenWeight = 0.4
)

// MatchEngine привязывает карточки магазинов к каноническому каталогу.
// Не потокобезопасен: один прогон сопоставления в момент времени.
type MatchEngine struct {
	store     CatalogStore
	norm      *Normalizer
	extractor *FeatureExtractor
	scorer    *Scorer

	// MasterThreshold минимальная оценка привязки к существующему мастеру
	MasterThreshold float64
}

// NewMatchEngine создает движок сопоставления поверх каталога
func NewMatchEngine(store CatalogStore, norm *Normalizer, extractor *FeatureExtractor, scorer *Scorer) *MatchEngine {
	return &MatchEngine{
		store:           store,
		norm:            norm,
		extractor:       extractor,
		scorer:          scorer,
		MasterThreshold: DefaultMasterThreshold,
	}
}

// Scorer возвращает скоринг, с которым работает движок
func (e *MatchEngine) Scorer() *Scorer {
	return e.scorer
}

// FindMatchingMaster ищет среди мастеров лучший для карточки.
// Мастера с другим брендом отбрасываются сразу. Возвращает nil,
// если ни один мастер не набрал порог. При равных оценках побеждает
// мастер, встреченный первым: сравнение строгое, равный счет не
// перебивает текущего лидера.
func (e *MatchEngine) FindMatchingMaster(listing *models.Listing, masters []*models.MasterProduct) *models.MasterProduct {
	listingBrand := e.scorer.resolveBrand(listing)
	listingBase := e.norm.NormalizeBase(listing.Name)
	listingTokens := e.norm.BaseTokens(listing.Name)

	var best *models.MasterProduct
	bestScore := 0.0

	for _, m := range masters {
		if listingBrand != "" && m.Brand != "" && !strings.EqualFold(listingBrand, m.Brand) {
			continue
		}

		nameSim := sequenceRatio(listingBase, m.NormalizedName)
		overlap := e.scorer.TokenOverlap(listingTokens, strings.Fields(m.SearchTokens))

		score := nameSim*masterNameWeight + overlap*masterTokenWeight
		if score > bestScore {
			bestScore = score
			best = m
		}
	}

	if best == nil || bestScore < e.MasterThreshold {
		return nil
	}
	return best
}

// CreateMasterFrom создает нового мастера по карточке. Каноническое имя —
// исходное название без объема памяти и цвета, с сохранением регистра.
func (e *MatchEngine) CreateMasterFrom(listing *models.Listing) (*models.MasterProduct, error) {
	brand := e.scorer.resolveBrand(listing)

	now := time.Now()
	master := &models.MasterProduct{
		CanonicalName:  e.norm.BaseDisplayName(listing.Name),
		Brand:          brand,
		Model:          e.extractor.ExtractModel(listing.Name, brand),
		Category:       listing.Category,
		NormalizedName: e.norm.NormalizeBase(listing.Name),
		SearchTokens:   strings.Join(e.norm.BaseTokens(listing.Name), " "),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if master.NormalizedName == "" {
		log.Printf("[Matcher] Предупреждение: пустое нормализованное имя у карточки %d (%q)", listing.ID, listing.Name)
	}

	if err := e.store.CreateMaster(master); err != nil {
		return nil, fmt.Errorf("create master for listing %d: %w", listing.ID, err)
	}

	return master, nil
}

// GetOrCreateVariant возвращает вариант мастера по объему памяти карточки,
// создавая его при необходимости. Карточки без распознанного объема
// собираются в один вариант с меткой "unknown".
func (e *MatchEngine) GetOrCreateVariant(masterID int64, listing *models.Listing) (*models.Variant, error) {
	capacity := e.extractor.ExtractCapacity(listing.Name)
	if capacity == "" {
		capacity = models.CapacityUnknown
	}

	variant, err := e.store.VariantByCapacity(masterID, capacity)
	if err != nil {
		return nil, fmt.Errorf("lookup variant %q of master %d: %w", capacity, masterID, err)
	}
	if variant != nil {
		return variant, nil
	}

	variant = &models.Variant{
		MasterProductID: masterID,
		Capacity:        capacity,
	}
	if err := e.store.CreateVariant(variant); err != nil {
		return nil, fmt.Errorf("create variant %q of master %d: %w", capacity, masterID, err)
	}

	return variant, nil
}

// MatchBatch привязывает все непривязанные карточки к каталогу.
// Привязки фиксируются пачками по batchSize; при ошибке фиксации прогон
// прерывается, уже зафиксированные пачки остаются. Повторный запуск
// на полностью привязанном каталоге ничего не меняет.
func (e *MatchEngine) MatchBatch(batchSize int) (*models.MatchStats, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	listings, err := e.store.UnassignedListings()
	if err != nil {
		return nil, fmt.Errorf("load unassigned listings: %w", err)
	}

	masters, err := e.store.Masters()
	if err != nil {
		return nil, fmt.Errorf("load masters: %w", err)
	}

	stats := &models.MatchStats{Total: len(listings)}
	log.Printf("[Matcher] Начало сопоставления: %d карточек, %d мастеров", len(listings), len(masters))

	pending := 0
	for _, listing := range listings {
		master, err := e.resolveMaster(listing, &masters, stats)
		if err != nil {
			return stats, err
		}

		variant, err := e.GetOrCreateVariant(master.ID, listing)
		if err != nil {
			return stats, err
		}

		if err := e.store.AssignListing(listing.ID, master.ID, variant.ID); err != nil {
			return stats, fmt.Errorf("assign listing %d: %w", listing.ID, err)
		}

		pending++
		if pending >= batchSize {
			if err := e.store.Commit(); err != nil {
				return stats, fmt.Errorf("commit batch: %w", err)
			}
			pending = 0
		}
	}

	if pending > 0 {
		if err := e.store.Commit(); err != nil {
			return stats, fmt.Errorf("commit final batch: %w", err)
		}
	}

	log.Printf("[Matcher] Сопоставление завершено: %d к существующим, %d новых мастеров, %d уже привязаны",
		stats.MatchedExisting, stats.Created, stats.AlreadyMatched)
	return stats, nil
}

// resolveMaster находит мастера для карточки: сохраняет существующую
// привязку, если мастер жив, иначе подбирает или создает нового.
// Срез мастеров пополняется созданными, чтобы следующие карточки
// того же прогона могли к ним привязаться.
func (e *MatchEngine) resolveMaster(listing *models.Listing, masters *[]*models.MasterProduct, stats *models.MatchStats) (*models.MasterProduct, error) {
	if listing.MasterProductID != 0 {
		existing, err := e.store.MasterByID(listing.MasterProductID)
		if err != nil {
			return nil, fmt.Errorf("lookup master %d: %w", listing.MasterProductID, err)
		}
		if existing != nil {
			stats.AlreadyMatched++
			return existing, nil
		}
		// Висячая ссылка: мастер удален, карточка привязывается заново
		log.Printf("[Matcher] Карточка %d ссылается на несуществующего мастера %d, привязываем заново", listing.ID, listing.MasterProductID)
	}

	if master := e.FindMatchingMaster(listing, *masters); master != nil {
		stats.MatchedExisting++
		return master, nil
	}

	master, err := e.CreateMasterFrom(listing)
	if err != nil {
		return nil, err
	}
	*masters = append(*masters, master)
	stats.Created++
	return master, nil
}

// RebuildAll сносит канонический каталог и строит его заново по всем
// карточкам. Операция разрушительная: существующие ID мастеров и
// вариантов не сохраняются.
func (e *MatchEngine) RebuildAll(batchSize int) (*models.MatchStats, error) {
	log.Printf("[Matcher] Полная пересборка каталога")

	if err := e.store.ResetCatalog(); err != nil {
		return nil, fmt.Errorf("reset catalog: %w", err)
	}

	return e.MatchBatch(batchSize)
}
