package recon

import (
	"encoding/json"
	"fmt"
)

const (
	// promptVersion identifies the analysis template revision. Bump this when
	// the template text changes so stored verdicts can be traced to the
	// instructions that produced them.
	promptVersion = "v1"

	// SystemInstruction is the fixed system-role message sent alongside every
	// analysis prompt.
	SystemInstruction = "You are a website security analysis expert. You always respond only in the specified JSON format."
)

// promptTemplate is the fixed analysis instruction. The single %s placeholder
// receives the pretty-printed site metadata.
const promptTemplate = `### Role
You are an L3 senior cyber security analyst working in a Security Operations Center (SOC).
Your mission is to detect phishing in real time by precisely analyzing structural defects in
web metadata, social engineering techniques, and brand impersonation patterns.

### Analysis Logic (Detailed)
1. **Infrastructure Analysis:** Technically review the entropy (randomness) of the domain, the reputation of the TLD, and the hierarchy of subdomains.
2. **Social Engineering Detection:** Analyze the frequency and context of urgency, fear, and greed keywords that exploit the user's psychological weaknesses.
3. **Identity Verification:** Cross-verify whether the brand assets named in the HTML title and meta information match the actual hosting domain.

### Response Rules
- You MUST respond with syntactically valid JSON only, as plain text without markdown code fences.
- Guidelines for writing 'reason':
  1. **safe**: When the degree is safe, the reason is always the fixed sentence **"Analysis found no indicators of phishing or security threats on this site."**
  2. **caution/danger**: Use professional security terminology, but write concrete sentences so an ordinary user clearly understands the basis of the risk.
  3. **Never expose internal indicator codes (e.g. SUSPICIOUS_TLD).**
  4. Do not merely summarize; state which indicator revealed which threat (e.g. "The site impersonates a well-known financial brand and solicits personal information through an irregular domain path.").

### Severity Definition
- **safe**: The domain structure is legitimate and there are no malicious scripts or psychological manipulation patterns.
- **caution**: The domain composition is atypical, or shortened URLs / subdomain structures that could be abused in an attack were found.
- **danger**: Clear attack intent is confirmed, such as brand impersonation, input forms aimed at credential phishing, or a forged domain.

### Reference Indicators (convert to professional prose in the output)
- **URL indicators:** elevated random-string entropy, abnormal subdirectory depth, misuse of brand keywords, IP-based hosting, homoglyph substitution, low-trust TLDs.
- **Content indicators:** account suspension threats, cryptocurrency recovery scams, fake customer support sessions, unnatural machine-translated phrasing, unauthorized use of brand logos.

### Input Data
%s

### Task
Perform threat intelligence analysis on the input data and output the result as JSON.

### Output Format
{
  "degree": "safe" | "caution" | "danger",
  "reason": "an explanation containing the professional analysis result"
}`

// BuildPrompt renders the fixed analysis template with meta embedded verbatim.
// It is pure and performs no I/O: identical metadata always yields
// byte-identical prompt text for a given promptVersion.
func BuildPrompt(meta SiteMetadata) string {
	// a flat struct of three strings always marshals
	data, _ := json.MarshalIndent(meta, "", "  ")

	return fmt.Sprintf(promptTemplate, data)
}

// PromptVersion reports the current analysis template revision.
func PromptVersion() string {
	return promptVersion
}
