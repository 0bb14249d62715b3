package app

// MinPlayersToStart is the minimum number of occupied seats required to
// start a game. Centralized so tests and local runs adjust one place.
const MinPlayersToStart = 2

// MaxPlayers keeps the round-7 deal (17 cards each plus a starter) safely
// inside the 104-card shoe.
const MaxPlayers = 4
