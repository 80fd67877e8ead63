package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Spool      bool      `json:"spool"`
	SpoolSize  int       `json:"spool_size"`
	LastCheck  time.Time `json:"last_check"`
}

// IsOnline reports whether both primary stores are reachable. The
// spool being down degrades audit delivery but does not take the
// service offline.
func (s Status) IsOnline() bool {
	return s.PostgreSQL && s.Redis
}
