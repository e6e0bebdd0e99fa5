package domain

// DNSRecord is a custom DNS record.
type DNSRecord struct {
	QName string `json:"qname"`
	RType string `json:"rtype"`
	Value string `json:"value"`
	Zone  string `json:"zone"`
}

// SecondaryNameservers lists the hostnames allowed to transfer zones.
type SecondaryNameservers struct {
	Hostnames StringList `json:"hostnames"`
}

// DNSRecommendations maps a domain to record types and their recommended values.
type DNSRecommendations map[string]map[string][]string
