// Package intent classifies the latest chat message into the command or
// lookup it asks for.
package intent

import (
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// HelpTrigger is the literal command that returns the static help text.
const HelpTrigger = "!help"

// Kind identifies what the user asked for.
type Kind int

const (
	General Kind = iota
	Help
	Wallet
	Search
	Address
)

func (k Kind) String() string {
	switch k {
	case Help:
		return "help"
	case Wallet:
		return "wallet"
	case Search:
		return "search"
	case Address:
		return "address"
	default:
		return "general"
	}
}

// Intent is the classification result. Value holds the wallet address,
// search query or token address extracted from the message.
type Intent struct {
	Kind  Kind
	Value string
}

const base58 = `[1-9A-HJ-NP-Za-km-z]`

var (
	addressRe = regexp.MustCompile(`\b` + base58 + `{32,50}\b`)

	walletPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(?i:wallet)\s+(` + base58 + `{32,50})$`),
		regexp.MustCompile(`^(?i:analyze\s+wallet)\s+(` + base58 + `{32,50})$`),
		regexp.MustCompile(`^(?i:check\s+wallet)\s+(` + base58 + `{32,50})$`),
		regexp.MustCompile(`^(?i:!wallet)\s+(` + base58 + `{32,50})$`),
		regexp.MustCompile(`^(?i:pnl)\s+(` + base58 + `{32,50})$`),
	}

	searchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(?i:search)\s+(.+)$`),
		regexp.MustCompile(`^(?i:find)\s+(.+)$`),
		regexp.MustCompile(`^(?i:look\s+for)\s+(.+)$`),
		regexp.MustCompile(`^(?i:!search)\s+(.+)$`),
	}
)

type rule struct {
	kind  Kind
	match func(text string) (string, bool)
}

// rules is evaluated top to bottom. Wallet and search commands must come
// before the bare address rule because their payloads also match it.
var rules = []rule{
	{kind: Help, match: func(text string) (string, bool) { return "", IsHelp(text) }},
	{kind: Wallet, match: WalletAddress},
	{kind: Search, match: SearchQuery},
	{kind: Address, match: ExtractAddress},
}

// Classify returns the first matching intent for text, or General.
func Classify(text string) Intent {
	for _, r := range rules {
		if v, ok := r.match(text); ok {
			return Intent{Kind: r.kind, Value: v}
		}
	}
	return Intent{Kind: General}
}

// IsHelp reports whether text is exactly the help trigger, ignoring case and
// surrounding whitespace.
func IsHelp(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), HelpTrigger)
}

// WalletAddress returns the address of a wallet command that spans the whole
// message.
func WalletAddress(text string) (string, bool) {
	return firstSubmatch(walletPatterns, strings.TrimSpace(text))
}

// SearchQuery returns the free-text query of a search command.
func SearchQuery(text string) (string, bool) {
	q, ok := firstSubmatch(searchPatterns, strings.TrimSpace(text))
	if !ok {
		return "", false
	}
	q = strings.TrimSpace(q)
	return q, q != ""
}

// ExtractAddress returns the first base58 token of 32 to 50 characters found
// anywhere in text.
func ExtractAddress(text string) (string, bool) {
	m := addressRe.FindString(text)
	return m, m != ""
}

// ContainsAddress reports whether text mentions a token or wallet address.
func ContainsAddress(text string) bool {
	_, ok := ExtractAddress(text)
	return ok
}

// IsStandardPublicKey reports whether addr decodes to a 32-byte ed25519 key.
// Extended identifiers (some launchpads append a suffix) are still routed as
// addresses; this only annotates reports.
func IsStandardPublicKey(addr string) bool {
	_, err := solana.PublicKeyFromBase58(addr)
	return err == nil
}

func firstSubmatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}
