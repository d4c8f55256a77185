package constants

// Топология обменника событий объявлений
const (
	AdsExchange     = "ads_exchange"
	AdsExchangeType = "direct"

	RoutingKeyAdCreated = "ad.created"
	RoutingKeyAdUpdated = "ad.updated"
	RoutingKeyAdDeleted = "ad.deleted"
)
