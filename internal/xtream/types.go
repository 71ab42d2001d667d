package xtream

// Category is one entry of get_live_categories / get_vod_categories /
// get_series_categories.
type Category struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	ParentID     int64  `json:"parent_id"`
}

// Stream is one entry of get_live_streams / get_vod_streams.
type Stream struct {
	StreamID           int64  `json:"stream_id"`
	Name               string `json:"name"`
	CategoryID         string `json:"category_id,omitempty"`
	EPGChannelID       string `json:"epg_channel_id,omitempty"`
	StreamIcon         string `json:"stream_icon,omitempty"`
	ContainerExtension string `json:"container_extension,omitempty"`
}

// SeriesEntry is one entry of get_series.
type SeriesEntry struct {
	SeriesID int64  `json:"series_id"`
	Name     string `json:"name"`
	Cover    string `json:"cover,omitempty"`
	Plot     string `json:"plot,omitempty"`
	Cast     string `json:"cast,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Rating   string `json:"rating,omitempty"`
}

// UserInfo is the user_info block of the account endpoint. Panels return
// most numbers as strings.
type UserInfo struct {
	Username       string `json:"username"`
	Status         string `json:"status"`
	ExpDate        string `json:"exp_date"`
	IsTrial        string `json:"is_trial"`
	ActiveCons     string `json:"active_cons"`
	MaxConnections string `json:"max_connections"`
}

// ServerInfo is the server_info block of the account endpoint.
type ServerInfo struct {
	URL            string `json:"url"`
	Port           string `json:"port"`
	HTTPSPort      string `json:"https_port"`
	ServerProtocol string `json:"server_protocol"`
	Timezone       string `json:"timezone"`
}

// Account is the response of player_api.php without an action.
type Account struct {
	UserInfo   UserInfo   `json:"user_info"`
	ServerInfo ServerInfo `json:"server_info"`
}
