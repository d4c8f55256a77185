package filestore

import (
	"ads-service/internal/core/domain"

	"github.com/mmcloughlin/geohash"
)

const geohashPrecision = 5 // ~5 км на ячейку, достаточно для группировки по району

// stampGeohashes проставляет geohash всем объявлениям с обеими
// координатами и стирает его у остальных. Выполняется при каждой
// записи коллекции, чтобы поле никогда не расходилось с координатами.
func stampGeohashes(ads []domain.Ad) {
	for i := range ads {
		if ads[i].HasCoordinates() {
			ads[i].Location.Geohash = geohash.EncodeWithPrecision(
				*ads[i].Location.Lat, *ads[i].Location.Lng, geohashPrecision)
		} else if ads[i].Location != nil {
			ads[i].Location.Geohash = ""
		}
	}
}
