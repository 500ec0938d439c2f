package dto

type OutletResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type ListOutletsResponse struct {
	Outlets []OutletResponse `json:"outlets"`
}
