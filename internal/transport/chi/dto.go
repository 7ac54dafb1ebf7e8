package chi

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moorfield/propsearch/internal/domain/sale"
	"github.com/moorfield/propsearch/internal/domain/search/result"
)

const dateLayout = "2006-01-02"

// transactionDTO is the wire shape of a transaction, both on upload and in
// search responses. Optional fields marshal as null when absent.
type transactionDTO struct {
	ID           string  `json:"transaction_id"`
	Price        int64   `json:"price"`
	Date         string  `json:"date"`
	PropertyType string  `json:"property_type"`
	BuildType    string  `json:"build_type"`
	ContractType string  `json:"contract_type"`
	Building     string  `json:"building"`
	Street       *string `json:"street"`
	Locality     *string `json:"locality"`
	Postcode     *string `json:"postcode"`
	Town         string  `json:"town"`
	District     string  `json:"district"`
	County       string  `json:"county"`
}

func (d *transactionDTO) toDomain() (sale.Transaction, error) {
	var tx sale.Transaction

	id, err := uuid.Parse(d.ID)
	if err != nil {
		return tx, fmt.Errorf("transaction_id: %w", err)
	}
	date, err := time.Parse(dateLayout, d.Date)
	if err != nil {
		return tx, fmt.Errorf("date: %w", err)
	}
	propertyType, err := sale.ParsePropertyType(d.PropertyType)
	if err != nil {
		return tx, err
	}
	buildType, err := sale.ParseBuildType(d.BuildType)
	if err != nil {
		return tx, err
	}
	contractType, err := sale.ParseContractType(d.ContractType)
	if err != nil {
		return tx, err
	}

	return sale.Transaction{
		ID:           id,
		Price:        d.Price,
		Date:         date,
		PropertyType: propertyType,
		BuildType:    buildType,
		ContractType: contractType,
		Building:     d.Building,
		Street:       d.Street,
		Locality:     d.Locality,
		Postcode:     d.Postcode,
		Town:         d.Town,
		District:     d.District,
		County:       d.County,
	}, nil
}

func transactionToDTO(tx sale.Transaction) transactionDTO {
	return transactionDTO{
		ID:           tx.ID.String(),
		Price:        tx.Price,
		Date:         tx.Date.Format(dateLayout),
		PropertyType: tx.PropertyType.String(),
		BuildType:    tx.BuildType.String(),
		ContractType: tx.ContractType.String(),
		Building:     tx.Building,
		Street:       tx.Street,
		Locality:     tx.Locality,
		Postcode:     tx.Postcode,
		Town:         tx.Town,
		District:     tx.District,
		County:       tx.County,
	}
}

type facetsDTO struct {
	Towns      []string `json:"towns"`
	Localities []string `json:"localities"`
	Districts  []string `json:"districts"`
	Counties   []string `json:"counties"`
	Prices     []string `json:"prices"`
}

type searchResponseDTO struct {
	Results []transactionDTO `json:"results"`
	Total   *int64           `json:"total,omitempty"`
	Facets  facetsDTO        `json:"facets"`
	Page    int              `json:"page"`
}

func responseToDTO(resp *result.Response) searchResponseDTO {
	results := make([]transactionDTO, 0, len(resp.Results))
	for _, tx := range resp.Results {
		results = append(results, transactionToDTO(tx))
	}
	return searchResponseDTO{
		Results: results,
		Total:   resp.Total,
		Facets: facetsDTO{
			Towns:      resp.Facets.Towns,
			Localities: resp.Facets.Localities,
			Districts:  resp.Facets.Districts,
			Counties:   resp.Facets.Counties,
			Prices:     resp.Facets.Prices,
		},
		Page: resp.Page,
	}
}

type suggestResponseDTO struct {
	Suggestions []string `json:"suggestions"`
}

type uploadResponseDTO struct {
	Accepted int `json:"accepted"`
}

type errorResponseDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
