package weeks

import "fmt"

// Week is one slate of games. The backend lists the newest week first.
type Week struct {
	ID         int64  `json:"id"`
	Season     int    `json:"season"`
	WeekNumber int    `json:"week_number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// Label renders "Week 3, 2024".
func (w Week) Label() string {
	return fmt.Sprintf("Week %d, %d", w.WeekNumber, w.Season)
}

// Find returns the week with the given ID.
func Find(list []Week, id int64) (Week, bool) {
	for _, w := range list {
		if w.ID == id {
			return w, true
		}
	}
	return Week{}, false
}
