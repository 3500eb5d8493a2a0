package pagestyle

//go:generate go tool go-enum --marshal --names

// Which of the page size groups is authoritative.
// ENUM(auto, preset, custom)
type Mode int
