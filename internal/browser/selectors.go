package browser

// DismissSelectors are tried in order: cookie consent, generic close buttons,
// newsletter prompts, then age gates.
var DismissSelectors = []string{
	`[class*="cookie"] button[class*="accept"]`,
	`[class*="cookie"] button[class*="agree"]`,
	`[class*="cookie"] button[class*="allow"]`,
	`[class*="cookie"] button[class*="close"]`,
	`[id*="cookie"] button[class*="accept"]`,
	`[id*="cookie"] button[class*="close"]`,
	`button[id*="accept-cookies"]`,
	`button[id*="acceptCookies"]`,
	`button[class*="accept-cookies"]`,
	`[data-testid*="cookie"] button`,

	`[class*="modal"] [class*="close"]`,
	`[class*="popup"] [class*="close"]`,
	`[class*="overlay"] [class*="close"]`,
	`[class*="dialog"] [class*="close"]`,
	`[aria-label="Close"]`,
	`[aria-label="close"]`,
	`[aria-label="Dismiss"]`,
	`button[class*="dismiss"]`,

	`[class*="newsletter"] [class*="close"]`,
	`[class*="signup"] [class*="close"]`,
	`[class*="subscribe"] [class*="close"]`,

	`button[class*="age"]`,
	`[class*="age-gate"] button`,
	`[class*="agegate"] button`,
	`[class*="verify"] button`,
}
