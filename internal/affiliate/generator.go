package affiliate

import (
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"bot-afiliados/internal/metrics"
)

const (
	ebayRoverURL        = "https://rover.ebay.com/rover/1/711-53200-19255-0/1"
	aliexpressTerminal  = "d4c0d3b6c8a44e6b9c8f2e1a3b5d7f9e"
	amazonCanonicalHost = "https://www.amazon.com/dp/"
)

var (
	asinPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
		regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
		regexp.MustCompile(`/product/([A-Z0-9]{10})`),
		regexp.MustCompile(`asin=([A-Z0-9]{10})`),
		regexp.MustCompile(`/([A-Z0-9]{10})(?:[/?]|$)`),
	}
	ebayItemPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/itm/([0-9]+)`),
		regexp.MustCompile(`item=([0-9]+)`),
		regexp.MustCompile(`/([0-9]{12,})`),
	}
	validASIN   = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	validItemID = regexp.MustCompile(`^[0-9]+$`)
)

// Credentials guarda os identificadores de cada programa de afiliados.
// Campo vazio significa rede não configurada: o link original é mantido.
type Credentials struct {
	AmazonTag            string
	EbayCampaignID       string
	AliExpressTrackingID string
	WalmartPublisherID   string
	TargetPublisherID    string
	BestBuyPublisherID   string
}

// Generator reescreve URLs de produtos com os parâmetros de afiliado
type Generator struct {
	creds Credentials
	log   *zap.Logger
}

// NewGenerator cria um gerador com as credenciais informadas
func NewGenerator(creds Credentials, log *zap.Logger) *Generator {
	return &Generator{creds: creds, log: log}
}

// Generate devolve o link de afiliado para a URL do produto. Nunca falha:
// em qualquer problema a URL original é devolvida.
func (g *Generator) Generate(productURL, storeName, productID string) string {
	network := DetectNetwork(storeName)

	var link string
	switch network {
	case Amazon:
		link = g.amazon(productURL, productID)
	case Ebay:
		link = g.ebay(productURL, productID)
	case AliExpress:
		link = g.appendParams(productURL, network, g.creds.AliExpressTrackingID,
			param{"aff_trace_key", g.creds.AliExpressTrackingID},
			param{"terminal_id", aliexpressTerminal})
	case Walmart:
		link = g.appendParams(productURL, network, g.creds.WalmartPublisherID,
			param{"veh", "aff"}, param{"sourceid", g.creds.WalmartPublisherID})
	case Target:
		link = g.appendParams(productURL, network, g.creds.TargetPublisherID,
			param{"veh", "aff"}, param{"afid", g.creds.TargetPublisherID})
	case BestBuy:
		link = g.appendParams(productURL, network, g.creds.BestBuyPublisherID,
			param{"veh", "aff"}, param{"ref", g.creds.BestBuyPublisherID})
	case Generic:
		link = g.generic(productURL, storeName)
	default:
		g.log.Warn("Rede de afiliados desconhecida", zap.Int("network", int(network)))
		return productURL
	}

	if link != productURL {
		metrics.LinksGenerated.WithLabelValues(network.String()).Inc()
	}
	return link
}

// Configured indica se a rede tem credencial (Generic sempre tem)
func (g *Generator) Configured(n Network) bool {
	switch n {
	case Amazon:
		return g.creds.AmazonTag != ""
	case Ebay:
		return g.creds.EbayCampaignID != ""
	case AliExpress:
		return g.creds.AliExpressTrackingID != ""
	case Walmart:
		return g.creds.WalmartPublisherID != ""
	case Target:
		return g.creds.TargetPublisherID != ""
	case BestBuy:
		return g.creds.BestBuyPublisherID != ""
	default:
		return true
	}
}

func (g *Generator) amazon(productURL, productID string) string {
	tag := g.creds.AmazonTag
	if tag == "" {
		g.log.Debug("Tag de associado da Amazon não configurada")
		return productURL
	}

	asin := ExtractASIN(productURL)
	if asin == "" && validASIN.MatchString(productID) {
		asin = productID
	}
	if asin != "" {
		return amazonCanonicalHost + asin + "?tag=" + url.QueryEscape(tag) + "&linkCode=ogi&th=1&psc=1"
	}

	link, ok := mergeQuery(productURL, param{"tag", tag})
	if !ok {
		return productURL
	}
	return link
}

func (g *Generator) ebay(productURL, productID string) string {
	campaign := g.creds.EbayCampaignID
	if campaign == "" {
		g.log.Debug("Campanha do eBay não configurada")
		return productURL
	}
	if _, err := url.Parse(productURL); err != nil {
		return productURL
	}

	item := ExtractEbayItemID(productURL)
	if item == "" && validItemID.MatchString(productID) {
		item = productID
	}

	params := []param{
		{"icep_ff3", "2"},
		{"pub", campaign},
		{"toolid", "10001"},
		{"campid", campaign},
		{"customid", ""},
	}
	if item != "" {
		params = append(params, param{"icep_item", item})
	}
	params = append(params,
		param{"ipn", "psmain"},
		param{"icep_vectorid", "229466"},
		param{"kwid", "902099"},
		param{"mtid", "824"},
		param{"kw", "lg"},
		param{"srcrot", "711-53200-19255-0"},
	)

	var b strings.Builder
	b.WriteString(ebayRoverURL)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	b.WriteString("&mpre=")
	b.WriteString(url.QueryEscape(productURL))
	return b.String()
}

func (g *Generator) appendParams(productURL string, network Network, credential string, params ...param) string {
	if credential == "" {
		g.log.Debug("Rede de afiliados não configurada", zap.String("network", network.String()))
		return productURL
	}
	link, ok := mergeQuery(productURL, params...)
	if !ok {
		return productURL
	}
	return link
}

func (g *Generator) generic(productURL, storeName string) string {
	content := strings.ReplaceAll(strings.ToLower(storeName), " ", "_")
	link, ok := mergeQuery(productURL,
		param{"utm_source", "telegram_bot"},
		param{"utm_medium", "affiliate"},
		param{"utm_campaign", "deals_bot"},
		param{"utm_content", content},
	)
	if !ok {
		return productURL
	}
	return link
}

// ExtractASIN procura o ASIN (10 caracteres) numa URL da Amazon
func ExtractASIN(productURL string) string {
	for _, re := range asinPatterns {
		if m := re.FindStringSubmatch(productURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractEbayItemID procura o número do anúncio numa URL do eBay
func ExtractEbayItemID(productURL string) string {
	for _, re := range ebayItemPatterns {
		if m := re.FindStringSubmatch(productURL); m != nil {
			return m[1]
		}
	}
	return ""
}
