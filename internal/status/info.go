package status

import (
	"encoding/xml"
	"fmt"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Snapshot is the world metadata one status request answers with, supplied
// fresh by the caller on every request via Server's snapshot func (spec.md
// §4.9: uptime/ip/port/owner/motd/player counts/map metadata/software).
type Snapshot struct {
	StartTime     time.Time
	IP            string
	Port          int
	Owner         string
	MOTD          string
	PlayersOnline int
	PlayersMax    int
	MapName       string
	Software      string
}

type xmlPlayers struct {
	Online int `xml:"online,attr"`
	Peak   int `xml:"peak,attr"`
	Max    int `xml:"max,attr"`
}

type xmlMap struct {
	Name string `xml:"name,attr"`
}

type xmlDocument struct {
	XMLName  xml.Name    `xml:"tibiaserver"`
	Uptime   string      `xml:"uptime"`
	IP       string      `xml:"ip"`
	Port     int         `xml:"port"`
	Owner    string      `xml:"owner"`
	MOTD     string      `xml:"motd"`
	Players  xmlPlayers  `xml:"players"`
	Map      xmlMap      `xml:"map"`
	Software string      `xml:"software"`
}

// buildInfoXML renders snap as the full status document (opcode 0xFF
// "info" request and the HTTP GET mirror both use this), optionally
// transcoding the result from UTF-8 into a legacy single-byte or CJK
// codepage for old clients that expect one, per StatusConfig.LegacyEncoding.
func buildInfoXML(snap Snapshot, peak int, legacyEncoding string) ([]byte, error) {
	doc := xmlDocument{
		Uptime:   time.Since(snap.StartTime).Round(time.Second).String(),
		IP:       snap.IP,
		Port:     snap.Port,
		Owner:    snap.Owner,
		MOTD:     snap.MOTD,
		Players:  xmlPlayers{Online: snap.PlayersOnline, Peak: peak, Max: snap.PlayersMax},
		Map:      xmlMap{Name: snap.MapName},
		Software: snap.Software,
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("status: marshal info xml: %w", err)
	}
	out = append([]byte(xml.Header), out...)

	if legacyEncoding == "" || legacyEncoding == "utf-8" {
		return out, nil
	}
	enc, err := htmlindex.Get(legacyEncoding)
	if err != nil {
		return nil, fmt.Errorf("status: unknown legacy_encoding %q: %w", legacyEncoding, err)
	}
	transcoded, _, err := transform.Bytes(enc.NewEncoder(), out)
	if err != nil {
		return nil, fmt.Errorf("status: transcode info xml to %q: %w", legacyEncoding, err)
	}
	return transcoded, nil
}
