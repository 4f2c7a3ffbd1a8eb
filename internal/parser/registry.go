package parser

import "github.com/ovolkova/confwatch/internal/fetch"

// Sources configures the standard parser set.
type Sources struct {
	// NaKonferenciiCategory is the category archive URL to crawl.
	NaKonferenciiCategory string
	// NaKonferenciiPages is the page budget for that archive (0 = default).
	NaKonferenciiPages int
	// TelegramChannel is the public channel username to read.
	TelegramChannel string
	// TelegramMessages is the message budget for the channel (0 = default).
	TelegramMessages int
}

// DefaultSet builds the full registry of known sources sharing one fetch
// client. Adding a source means adding a parser here, not touching the
// orchestrator. Sources whose target is configured empty are left out
// rather than registered to fail on every pass.
func DefaultSet(client *fetch.Client, cfg Sources) []Parser {
	parsers := []Parser{
		NewHseAprilConf(client, 0),
		NewEconorus(client),
		NewHseConfStudents(client),
		NewHseEconScience(client),
		NewHseScience(client),
		NewCbrActivity(client),
		NewInecon(client),
	}
	if cfg.NaKonferenciiCategory != "" {
		parsers = append(parsers, NewNaKonferencii(client, cfg.NaKonferenciiCategory, cfg.NaKonferenciiPages))
	}
	if cfg.TelegramChannel != "" {
		parsers = append(parsers, NewTelegramChannel(client, cfg.TelegramChannel, cfg.TelegramMessages))
	}
	return parsers
}
