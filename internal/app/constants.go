package app

// MinPlayersToStartGame defines the number of occupied seats required to start a game.
// Landlord is always played three-handed; lobbies are topped up with bots first.
const MinPlayersToStartGame = 3

// AbortReasonNoLandlord is recorded when too many auctions in a row were voided.
const AbortReasonNoLandlord = "no_landlord"
