package library

import (
	"encoding/xml"
	"fmt"
	"os"
)

// locationAttr is the track attribute holding the file reference.
const locationAttr = "Location"

// Library is a parsed DJ_PLAYLISTS document.
type Library struct {
	XMLName    xml.Name    `xml:"DJ_PLAYLISTS"`
	Attrs      []xml.Attr  `xml:",any,attr"`
	Product    *RawSection `xml:"PRODUCT"`
	Collection Collection  `xml:"COLLECTION"`
	Playlists  *RawSection `xml:"PLAYLISTS"`
}

// RawSection preserves an element we never rewrite: its attributes are kept
// as-is and its children pass through as raw inner XML.
type RawSection struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Inner string     `xml:",innerxml"`
}

// Collection is the COLLECTION element with its track list.
type Collection struct {
	Attrs  []xml.Attr `xml:",any,attr"`
	Tracks []Track    `xml:"TRACK"`
}

// Track is a single TRACK element. The Location attribute lives inside
// Attrs like any other; children (TEMPO, POSITION_MARK, ...) are raw.
type Track struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Inner string     `xml:",innerxml"`
}

// Location returns the track's Location attribute, or "" if absent.
func (t *Track) Location() string {
	for _, a := range t.Attrs {
		if a.Name.Local == locationAttr {
			return a.Value
		}
	}
	return ""
}

func (t *Track) setLocation(value string) {
	for i := range t.Attrs {
		if t.Attrs[i].Name.Local == locationAttr {
			t.Attrs[i].Value = value
			return
		}
	}
	t.Attrs = append(t.Attrs, xml.Attr{Name: xml.Name{Local: locationAttr}, Value: value})
}

// TrackRef identifies one track entry and its current reference. Index is
// the track's position in the collection, which stays valid for updates
// even when two tracks carry identical Location values.
type TrackRef struct {
	Index    int
	Location string
}

// Load parses the document at path. A well-formed check happens here:
// malformed markup fails with an error naming the file.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library %s: %w", path, err)
	}

	var lib Library
	if err := xml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse library %s: %w", path, err)
	}

	return &lib, nil
}

// Locations returns every track that carries a non-empty Location
// attribute, in document order.
func (l *Library) Locations() []TrackRef {
	refs := make([]TrackRef, 0, len(l.Collection.Tracks))
	for i := range l.Collection.Tracks {
		if loc := l.Collection.Tracks[i].Location(); loc != "" {
			refs = append(refs, TrackRef{Index: i, Location: loc})
		}
	}
	return refs
}

// TrackCount returns the number of tracks in the collection.
func (l *Library) TrackCount() int {
	return len(l.Collection.Tracks)
}

// SetLocation rewrites the Location attribute of the track at index,
// touching nothing else.
func (l *Library) SetLocation(index int, reference string) error {
	if index < 0 || index >= len(l.Collection.Tracks) {
		return fmt.Errorf("track index %d out of range (collection has %d tracks)",
			index, len(l.Collection.Tracks))
	}
	l.Collection.Tracks[index].setLocation(reference)
	return nil
}

// Serialize renders the document with an XML declaration. Formatting is
// normalized by the encoder; attribute values and child elements survive
// byte-for-byte in meaning, not in whitespace.
func (l *Library) Serialize() ([]byte, error) {
	body, err := xml.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize library: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
