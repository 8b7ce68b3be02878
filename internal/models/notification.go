package models

// ApprovedLead is everything the dispatcher needs to announce a lead that
// passed the decision cascade and dedup filtering.
type ApprovedLead struct {
	GuildID        string
	ChannelID      string
	ChannelName    string
	MessageJumpURL string

	ASINs      []string // dedup-fresh identifiers only
	Cost       *float64
	SalePrice  *float64
	ROIPercent *float64
	Profit     *float64
	SourceURL  string // first amazon URL seen in the message, if any

	DMEnabled      bool
	LogChannelID   string
	RelayChannelID string // destination of the channel link, "" when unmapped
}
