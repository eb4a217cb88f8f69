package models

// TicketMetadata is the ERC-721 style document published for every minted
// ticket. The attribute list mirrors what marketplaces expect.
type TicketMetadata struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Attributes  []MetadataAttribute `json:"attributes"`
}

type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}
