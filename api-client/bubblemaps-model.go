package apiclient

import "github.com/shopspring/decimal"

const statusOK = "OK"

type mapMetadataResponse struct {
	Status           string                 `json:"status"`
	Message          string                 `json:"message"`
	DtUpdate         string                 `json:"dt_update"`
	IdentifiedSupply identifiedSupplyFields `json:"identified_supply"`
}

type identifiedSupplyFields struct {
	PercentInCEXs      *float64 `json:"percent_in_cexs"`
	PercentInContracts *float64 `json:"percent_in_contracts"`
}

type mapDataResponse struct {
	Status   string        `json:"status"`
	FullName string        `json:"full_name"`
	Symbol   string        `json:"symbol"`
	IsNFT    bool          `json:"is_X721"`
	Nodes    []mapDataNode `json:"nodes"`
	Links    []mapDataLink `json:"links"`
}

type mapDataNode struct {
	Address    string          `json:"address"`
	Amount     decimal.Decimal `json:"amount"`
	IsContract bool            `json:"is_contract"`
	Name       string          `json:"name"`
	Percentage float64         `json:"percentage"`
}

type mapDataLink struct {
	Forward  float64 `json:"forward"`
	Backward float64 `json:"backward"`
}
