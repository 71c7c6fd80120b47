// Package queries generates web search query strings from a prospect's
// identity facts. All generators are pure: the same prospect always yields
// the same ordered, duplicate-free query list. Earlier queries are canonical
// identity lookups; later ones are exploratory.
package queries

import (
	"fmt"
	"strings"
)

// General produces a small set of broad identity, company, and news queries.
func General(fullName, company, title string) []string {
	queries := []string{
		fmt.Sprintf("%s %s", fullName, company),
		fmt.Sprintf("%s recent news 2024 2025", company),
		fmt.Sprintf("%s industry trends challenges", company),
	}
	if title != "" {
		queries = append(queries, fmt.Sprintf("%s %s responsibilities challenges", title, company))
	}
	return dedupe(queries)
}

// DeepSubject produces the wide prospect-research query set: company profile,
// certifications and compliance, incident history, hiring signals, trigger
// events, the prospect's personal background, and industry risk framing.
func DeepSubject(fullName, company, title string) []string {
	domain := companyDomain(company)
	queries := []string{
		// Company overview
		fmt.Sprintf("%s founded headquarters employees revenue size type industry", company),
		fmt.Sprintf("%s business model services products customer base target market", company),
		fmt.Sprintf("%s \"about us\" company overview corporate information mission", company),
		fmt.Sprintf("%s annual report financial statements investor relations", company),
		fmt.Sprintf("%s company profile crunchbase linkedin company page", company),

		// Security certifications and compliance
		fmt.Sprintf("%s security certifications SOC ISO 27001 PCI DSS compliance attestation", company),
		fmt.Sprintf("site:%s.com security trust compliance certifications framework", domain),
		fmt.Sprintf("%s regulatory compliance standards GDPR HIPAA FedRAMP requirements", company),
		fmt.Sprintf("\"%s\" audit report security assessment penetration testing", company),
		fmt.Sprintf("%s trust center security whitepaper compliance documentation", company),

		// Security incidents and vulnerabilities
		fmt.Sprintf("\"%s\" security incident breach CVE vulnerability exploit disclosure", company),
		fmt.Sprintf("%s data breach security incident hack cyber attack ransomware", company),
		fmt.Sprintf("%s vulnerability disclosure security advisory patch update", company),
		fmt.Sprintf("site:cve.mitre.org \"%s\" vulnerability database", company),

		// Technical hiring signals
		fmt.Sprintf("%s careers jobs security engineer DevOps AppSec cybersecurity site:linkedin.com", company),
		fmt.Sprintf("site:%s.com careers security engineering software developer jobs", domain),
		fmt.Sprintf("%s job openings developer security architect technical roles", company),
		fmt.Sprintf("\"%s\" hiring security team application security positions", company),

		// Trigger events and recent news
		fmt.Sprintf("\"%s\" recent news announcements 2024 2025 funding acquisition merger", company),
		fmt.Sprintf("%s regulatory filing SEC disclosure compliance update 10-K 10-Q", company),
		fmt.Sprintf("%s product launch digital transformation technology initiative expansion", company),
		fmt.Sprintf("\"%s\" executive hire leadership change C-suite appointment", company),
		fmt.Sprintf("%s press release partnership acquisition investment round", company),

		// Personal background
		fmt.Sprintf("\"%s\" %s LinkedIn profile career background", fullName, company),
		fmt.Sprintf("%s %s interview presentation conference speaking", fullName, company),
		fmt.Sprintf("\"%s\" education university degree certification", fullName),
		fmt.Sprintf("%s previous companies career history experience", fullName),

		// Industry context and risk
		fmt.Sprintf("%s industry analysis market position competitive landscape threats", company),
		fmt.Sprintf("%s financial performance revenue growth annual report earnings", company),
		fmt.Sprintf("%s regulatory requirements compliance risk industry specific", company),
		fmt.Sprintf("%s application security risk web application vulnerabilities industry", company),
	}

	if title != "" {
		queries = append(queries,
			fmt.Sprintf("%s %s responsibilities decision authority budget", company, title),
			fmt.Sprintf("\"%s\" %s leadership management", fullName, title),
		)
	}

	return dedupe(queries)
}

// Technology produces queries targeting tooling, infrastructure, and
// security-stack keywords for the prospect's company.
func Technology(company string) []string {
	return dedupe([]string{
		fmt.Sprintf("%s technology stack development tools programming languages", company),
		fmt.Sprintf("%s security tools vulnerability management application security", company),
		fmt.Sprintf("%s DevOps CI/CD pipeline infrastructure cloud provider", company),
		fmt.Sprintf("%s software development framework testing tools databases", company),
		fmt.Sprintf("%s API security OWASP penetration testing security scanning", company),
		fmt.Sprintf("%s tech stack engineering blog github repositories", company),
	})
}

// Organizational produces queries targeting leadership, governance, and
// reporting-structure keywords for the prospect's company.
func Organizational(company, title string) []string {
	queries := []string{
		fmt.Sprintf("%s CEO president executive leadership team", company),
		fmt.Sprintf("%s CTO CIO CISO technology leadership directors", company),
		fmt.Sprintf("%s board of directors senior management executives", company),
		fmt.Sprintf("%s organizational chart management structure hierarchy", company),
		fmt.Sprintf("%s vice president VP director leadership team", company),
		fmt.Sprintf("%s executive team management bios backgrounds", company),
		fmt.Sprintf("%s senior directors department heads leadership", company),
		fmt.Sprintf("%s management team LinkedIn executive profiles", company),
		fmt.Sprintf("\"%s\" leadership directory executive bios", company),
		fmt.Sprintf("%s annual report executive team management", company),
	}
	if title != "" {
		queries = append(queries,
			fmt.Sprintf("%s %s leadership team reporting structure", company, title),
			fmt.Sprintf("%s %s director manager executives", company, title),
		)
	}
	return dedupe(queries)
}

// companyDomain reduces a company name to a bare lowercase token usable in
// site: operators, e.g. "Acme Corp" -> "acmecorp".
func companyDomain(company string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(company) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dedupe removes duplicate queries while preserving first-seen order.
func dedupe(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	unique := make([]string, 0, len(queries))
	for _, q := range queries {
		if !seen[q] {
			unique = append(unique, q)
			seen[q] = true
		}
	}
	return unique
}
