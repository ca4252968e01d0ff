package prediction

import "fmt"

// Domain identifies one of the predictive tasks.
type Domain string

const (
	Traffic Domain = "traffic"
	Energy  Domain = "energy"
	Water   Domain = "water"
	Waste   Domain = "waste"
	Air     Domain = "air"
)

// Domains lists every domain in reporting order.
func Domains() []Domain { return []Domain{Traffic, Energy, Water, Waste, Air} }

func (d Domain) String() string { return string(d) }

// Title is the human readable name used in reports.
func (d Domain) Title() string {
	switch d {
	case Traffic:
		return "Traffic Management"
	case Energy:
		return "Energy Management"
	case Water:
		return "Water Management"
	case Waste:
		return "Waste Management"
	case Air:
		return "Air Quality Monitoring"
	default:
		return string(d)
	}
}

// ParseDomain validates s as a domain name.
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown domain %q", s)
}
