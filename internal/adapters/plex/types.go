package plex

import "encoding/xml"

// Agent identifiers reported on library sections and item GUIDs.
const (
	AgentPlex = "tv.plex.agents"
	AgentHama = "com.plexapp.agents.hama"
)

// Guid is one external id reference of an item, e.g. "imdb://tt0137523".
type Guid struct {
	ID string `xml:"id,attr"`
}

// MediaInfo describes one encoded version of an item.
type MediaInfo struct {
	VideoResolution string `xml:"videoResolution,attr"`
	Width           int    `xml:"width,attr"`
	Height          int    `xml:"height,attr"`
}

// Is4K reports whether this version is a 4K encode.
func (m MediaInfo) Is4K() bool {
	return m.VideoResolution == "4k"
}

// Metadata is a Plex library item: a movie, show, season or episode.
type Metadata struct {
	RatingKey            string      `xml:"ratingKey,attr"`
	ParentRatingKey      string      `xml:"parentRatingKey,attr"`
	GrandparentRatingKey string      `xml:"grandparentRatingKey,attr"`
	GUID                 string      `xml:"guid,attr"`
	Type                 string      `xml:"type,attr"`
	Title                string      `xml:"title,attr"`
	Year                 int         `xml:"year,attr"`
	Index                int         `xml:"index,attr"`
	ParentIndex          int         `xml:"parentIndex,attr"`
	LeafCount            int         `xml:"leafCount,attr"`
	AddedAt              int64       `xml:"addedAt,attr"`
	UpdatedAt            int64       `xml:"updatedAt,attr"`
	Guids                []Guid      `xml:"Guid"`
	Media                []MediaInfo `xml:"Media"`
}

// Has4K reports whether any version of the item is a 4K encode.
func (m Metadata) Has4K() bool {
	for _, v := range m.Media {
		if v.Is4K() {
			return true
		}
	}
	return false
}

// HasStandard reports whether any version of the item is not a 4K encode.
func (m Metadata) HasStandard() bool {
	for _, v := range m.Media {
		if !v.Is4K() {
			return true
		}
	}
	return false
}

// Library is a Plex library section.
type Library struct {
	Key   string `xml:"key,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
	Agent string `xml:"agent,attr"`
}

// container is the MediaContainer envelope of every Plex XML response.
// Movies and episodes come back as Video, shows and seasons as Directory.
type container struct {
	XMLName     xml.Name   `xml:"MediaContainer"`
	Size        int        `xml:"size,attr"`
	TotalSize   int        `xml:"totalSize,attr"`
	Videos      []Metadata `xml:"Video"`
	Directories []Metadata `xml:"Directory"`
}

func (c container) items() []Metadata {
	items := make([]Metadata, 0, len(c.Videos)+len(c.Directories))
	items = append(items, c.Videos...)
	items = append(items, c.Directories...)
	return items
}

type librariesResponse struct {
	XMLName   xml.Name  `xml:"MediaContainer"`
	Libraries []Library `xml:"Directory"`
}

// Page is one slice of a library listing.
type Page struct {
	Items     []Metadata
	TotalSize int
}
