package domain

// OrganisationCount is one row of the articles-per-organisation aggregate.
type OrganisationCount struct {
	Organisation string
	Count        int64
}

// DailyCount is the number of articles released on one day (UTC date,
// formatted 2006-01-02).
type DailyCount struct {
	Day   string
	Count int64
}

// DailyOrganisationCount is one day's article count for one organisation.
type DailyOrganisationCount struct {
	Day          string
	Organisation string
	Count        int64
}

// HourlyCount is the number of articles released during one hour of the
// day (0-23), over all days. Hours with no articles are absent.
type HourlyCount struct {
	Hour  int
	Count int64
}
