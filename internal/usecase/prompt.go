package usecase

import (
	"strings"

	"solana-terminal/internal/domain"
)

const redMarkup = `<span style="color: red;">`

// Persona is the assistant identity rendered into every prompt.
type Persona struct {
	Name         string
	NativeSymbol string
	NativeMint   string
}

// buildPromptMessages prepends the system instruction to the conversation,
// which is passed through unmodified and in order.
func buildPromptMessages(system string, conversation []domain.ChatMessage) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(conversation)+1)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: system})
	return append(messages, conversation...)
}

func basePrompt(p Persona) string {
	return strings.Join([]string{
		"You are " + p.Name + ", a specialized AI assistant focused on Solana blockchain analysis and cryptocurrency insights. " +
			"Your native token is " + p.NativeSymbol + " with mint address " + p.NativeMint + " on Solana. You have deep knowledge of:",
		"",
		"- Solana blockchain technology and ecosystem",
		"- Token analysis and DeFi protocols on Solana",
		"- SPL tokens, NFTs, and smart contracts",
		"- Solana development tools and frameworks",
		"- Market analysis and trading insights",
		"- Wallet security and best practices",
		"- Portfolio analysis and PnL tracking",
		"",
		"IMPORTANT FORMATTING RULES:",
		"- Use red text for high-risk warnings by wrapping text in " + redMarkup + "WARNING TEXT</span>",
		"- Use 🔴 emoji for critical warnings",
		"- Use 🟡 emoji for moderate warnings",
		"- Use ✅ emoji for good/safe indicators",
		"- Keep responses concise, technical, and actionable",
		"- Use terminal-style formatting when appropriate",
	}, "\n")
}

func tokenAnalysisPrompt(address, tokenReport string) string {
	return strings.Join([]string{
		"",
		"",
		"The user's message contains a Solana token mint address: " + address,
		"",
		"Here is the REAL-TIME data for this token:",
		"",
		tokenReport,
		"",
		"Based on this real data and the user's question, provide a comprehensive analysis including:",
		"",
		"1. 🏷️ TOKEN OVERVIEW",
		"   - Basic token information and legitimacy",
		"   - Social presence and community",
		"",
		"2. 💰 MARKET ANALYSIS",
		"   - Current price action and trends",
		"   - Market cap and volume analysis",
		"   - Liquidity assessment",
		"   - All-time high comparison (if available)",
		"",
		"3. 🔒 SECURITY ASSESSMENT",
		"   - Risk score interpretation",
		"   - Authority controls (freeze/mint)",
		"   - Holder distribution analysis",
		"",
		"4. 📊 TRADING INSIGHTS",
		"   - Recent price movements",
		"   - Buy/sell pressure",
		"   - Volume trends",
		"   - ATH distance analysis",
		"",
		"5. ⚠️ RISK FACTORS",
		"   - Identify any red flags using " + redMarkup + "RED TEXT</span> for critical warnings",
		"   - Sniper/insider activity",
		"   - Overall investment risk",
		"",
		"6. 💡 RECOMMENDATIONS",
		"   - Trading suggestions",
		"   - Risk management advice",
		"",
		"CRITICAL WARNING FORMATTING:",
		"- Use " + redMarkup + "TEXT</span> for any high-risk factors like:",
		"  - High holder concentration (>50%)",
		"  - Distance from ATH >90%",
		"  - Low liquidity (<$5,000)",
		"  - Active freeze/mint authorities",
		"  - High sniper/insider activity",
		"  - Low LP burn (<50%)",
		"  - Extreme volatility",
		"",
		"Answer the user's specific question while incorporating this token analysis data. " + closingInstruction,
	}, "\n")
}

func searchPrompt(query, searchReport string) string {
	return strings.Join([]string{
		"",
		"",
		`The user searched for: "` + query + `"`,
		"",
		"Here are the search results:",
		"",
		searchReport,
		"",
		"Provide a helpful analysis of the search results, highlighting:",
		"1. 🔍 SEARCH SUMMARY - Overview of what was found",
		"2. 💎 TOP PICKS - Most interesting/relevant tokens from results",
		"3. 📊 KEY METRICS - Important data points to consider",
		"4. ⚠️ RISK ASSESSMENT - Security considerations for the found tokens",
		"5. 💡 RECOMMENDATIONS - Which tokens might be worth further investigation",
		"",
		"CRITICAL WARNING FORMATTING:",
		"- Use " + redMarkup + "TEXT</span> for any high-risk factors in the search results",
		"- Highlight tokens with low liquidity (<$5,000), low LP burn (<50%), or active authorities",
		"- Warn about concentration risks and other red flags",
		"",
		closingInstruction,
	}, "\n")
}

func walletAnalysisPrompt(address, walletReport string) string {
	return strings.Join([]string{
		"",
		"",
		"The user wants to analyze a Solana wallet address: " + address,
		"",
		"Here is the REAL-TIME wallet data and PnL chart:",
		"",
		walletReport,
		"",
		"Based on this real wallet data, provide a comprehensive portfolio analysis including:",
		"",
		"1. 💼 PORTFOLIO OVERVIEW",
		"   - Current portfolio value and composition",
		"   - Historical performance summary",
		"   - Key metrics and statistics",
		"",
		"2. 📈 PERFORMANCE ANALYSIS",
		"   - PnL breakdown (24h, 30d, total)",
		"   - Portfolio highs and lows",
		"   - Volatility assessment",
		"",
		"3. 📊 TRADING PATTERNS",
		"   - Portfolio value trends",
		"   - Risk/reward analysis",
		"   - Performance consistency",
		"",
		"4. ⚠️ RISK ASSESSMENT",
		"   - Portfolio concentration risks",
		"   - Volatility warnings using " + redMarkup + "RED TEXT</span>",
		"   - Drawdown analysis",
		"",
		"5. 💡 PORTFOLIO RECOMMENDATIONS",
		"   - Risk management suggestions",
		"   - Diversification advice",
		"   - Performance improvement tips",
		"",
		"CRITICAL WARNING FORMATTING:",
		"- Use " + redMarkup + "TEXT</span> for any high-risk factors like:",
		"  - Severe portfolio decline (>70%)",
		"  - Major recent losses (>50% in 30d)",
		"  - Significant 24h losses (>20%)",
		"  - Extreme volatility",
		"  - Significant drawdowns",
		"",
		closingInstruction,
	}, "\n")
}

const closingInstruction = "Format your response in a clean, terminal-style layout with clear sections and use emojis for better readability."

// helpText is the static response to the help command.
func helpText(p Persona) string {
	return strings.Join([]string{
		"",
		"🔧 " + p.Name + " TERMINAL COMMANDS & USAGE GUIDE",
		"═══════════════════════════════════════",
		"",
		"📋 AVAILABLE COMMANDS:",
		"┌─────────────────────────────────────────────────────────────┐",
		"│ !help          - Show this help menu                        │",
		"│ !clear         - Clear terminal (refresh page)              │",
		"│ !status        - Show system status                         │",
		"│ !examples      - Show example queries                       │",
		"│ !search <term> - Search for tokens by name/symbol           │",
		"│ search <term>  - Alternative search command                 │",
		"│ find <term>    - Another way to search tokens               │",
		"│ wallet <addr>  - Analyze wallet PnL and portfolio           │",
		"│ !wallet <addr> - Alternative wallet analysis command        │",
		"└─────────────────────────────────────────────────────────────┘",
		"",
		"🪙 TOKEN ANALYSIS:",
		"• Paste any 32-50 character Solana token address for instant analysis",
		"• Example: 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
		"• Includes real-time data, ATH analysis, and security assessment",
		"• " + redMarkup + "RED WARNINGS</span> highlight critical risk factors",
		"",
		"💼 WALLET ANALYSIS:",
		`• "wallet 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"`,
		`• "analyze wallet [address]" - Full portfolio analysis`,
		`• "check wallet [address]" - Quick wallet overview`,
		`• "pnl [address]" - Focus on profit/loss data`,
		"• Includes PnL charts, performance metrics, and risk assessment",
		"",
		"🔍 TOKEN SEARCH:",
		`• "search BONK" - Find BONK token`,
		`• "find meme coins" - Search for meme-related tokens`,
		`• "!search AI tokens" - Look for AI-themed tokens`,
		`• "look for pump.fun" - Find pump.fun tokens`,
		"",
		"💬 NATURAL LANGUAGE QUERIES:",
		`• "What is Solana?"`,
		`• "How does Solana DeFi work?"`,
		`• "Explain SPL tokens"`,
		`• "What are the risks of trading meme coins?"`,
		`• "How to analyze a token's liquidity?"`,
		"",
		"📊 MARKET ANALYSIS:",
		`• "Current Solana ecosystem trends"`,
		`• "Best Solana DeFi protocols"`,
		`• "How to spot rug pulls"`,
		`• "Solana NFT market analysis"`,
		"",
		"🔍 TECHNICAL QUERIES:",
		`• "How does Solana consensus work?"`,
		`• "Solana vs Ethereum comparison"`,
		`• "Solana validator requirements"`,
		`• "Understanding Solana fees"`,
		"",
		"⚡ QUICK TIPS:",
		"• Responses include real-time data when addresses are detected",
		"• Search results show top matches with key metrics",
		"• Wallet analysis includes PnL charts and performance tracking",
		"• All analysis includes security assessments and risk factors",
		"• " + redMarkup + "🔴 RED FLAGS</span> are highlighted for your safety",
		"• Type naturally - I understand context and follow-up questions",
		"",
		"Ready to analyze the Solana ecosystem! 🚀",
		"",
	}, "\n")
}
