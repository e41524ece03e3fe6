package affiliate

import "strings"

// Network identifica o programa de afiliados usado para reescrever um link
type Network int

const (
	Generic Network = iota
	Amazon
	Ebay
	AliExpress
	Walmart
	Target
	BestBuy
)

// Networks lista todas as redes conhecidas
var Networks = []Network{Generic, Amazon, Ebay, AliExpress, Walmart, Target, BestBuy}

func (n Network) String() string {
	switch n {
	case Amazon:
		return "amazon"
	case Ebay:
		return "ebay"
	case AliExpress:
		return "aliexpress"
	case Walmart:
		return "walmart"
	case Target:
		return "target"
	case BestBuy:
		return "bestbuy"
	default:
		return "generic"
	}
}

// ParseNetwork converte o nome usado no arquivo de lojas para Network
func ParseNetwork(s string) Network {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range Networks {
		if n.String() == s {
			return n
		}
	}
	return Generic
}

// DetectNetwork escolhe a rede pelo nome da loja. A ordem importa:
// a primeira substring encontrada vence.
func DetectNetwork(storeName string) Network {
	name := strings.ToLower(storeName)
	switch {
	case strings.Contains(name, "amazon"):
		return Amazon
	case strings.Contains(name, "ebay"):
		return Ebay
	case strings.Contains(name, "aliexpress"):
		return AliExpress
	case strings.Contains(name, "walmart"):
		return Walmart
	case strings.Contains(name, "target"):
		return Target
	case strings.Contains(name, "bestbuy"), strings.Contains(name, "best buy"):
		return BestBuy
	default:
		return Generic
	}
}
