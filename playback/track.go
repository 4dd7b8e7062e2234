package playback

// Track is the loadable unit handed over by the playlist collaborator.
// This is a copy of the data, not a reference into the playlist's model.
type Track struct {
	PrimarySrc   string
	SecondarySrc string // empty when the chapter has no 360° stream
	Title        string
	ArtworkRef   string
}

// HasSecondary reports whether the track carries a secondary source.
func (t Track) HasSecondary() bool {
	return t.SecondarySrc != ""
}
