package services

type Broadcaster interface {
	BroadcastBalanceUpdate(userID int64)
	BroadcastTowersOffer(userID int64, gameID string, rowsCleared int, multiplier float64)
	BroadcastTowersSettled(userID int64, gameID string, status string, payout float64)
}
