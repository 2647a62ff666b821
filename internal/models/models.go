package models

type StatusResponse struct {
	Status string `json:"status"`
}

type CountriesResponse struct {
	Countries []string `json:"countries"`
}

type RandomNamesResponse struct {
	RandomNames []string `json:"random_names"`
}

type RandomMaleNamesResponse struct {
	RandomMaleNames []string `json:"random_male_names"`
}

type RandomFemaleNamesResponse struct {
	RandomFemaleNames []string `json:"random_female_names"`
}

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type CountryStat struct {
	Country     string  `json:"country"`
	Names       int     `json:"names"`
	MaleNames   int     `json:"male_names"`
	FemaleNames int     `json:"female_names"`
	Mass        float64 `json:"mass"`
}

type CountryStatsPage struct {
	Data   []CountryStat `json:"data"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
