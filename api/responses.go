package api

// StatusResponse acknowledges a mutation.
type StatusResponse struct {
	Status string `json:"status" description:"Operation status"`
}

var okResponse = &StatusResponse{Status: "ok"}

// EntitiesResponse lists the registered entity names.
type EntitiesResponse struct {
	Entities []string `json:"entities" description:"Registered entity names, sorted"`
}
