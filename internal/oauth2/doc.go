// Package oauth2 implements the HubSpot authorization-code flow.
//
// A flow has three steps, each backed by the cache:
//
//  1. Authorize stores a state record under hubspot_state:{org}:{user} and
//     returns the HubSpot authorization URL carrying the encoded state.
//  2. Callback decodes the returned state and compares its nonce with the
//     cached record in constant time. Only on a match is the record taken and
//     the code exchanged for a token. The raw token response is cached under
//     hubspot_credentials:{org}:{user}.
//  3. Credentials takes the cached token response. It can be read once.
//
// State is encoded by a StateCodec: Base64StateCodec (URL-safe base64 JSON)
// by default, or JWTStateCodec when a signing secret is configured. With
// Config.UsePKCE the flow also caches a code verifier under
// hubspot_verifier:{org}:{user} and sends its S256 challenge.
//
// Base64 state is readable by anyone who sees the redirect URL, org and user
// IDs included, and can be forged with a guessed nonce. A callback with a
// wrong nonce is rejected without touching the pending record, so it cannot
// cancel someone else's flow; configure a signing secret to reject forged
// state before the cache is read at all.
//
// Every record expires after Config.StateTTL, 600 seconds by default.
//
// Example:
//
//	flow, err := oauth2.NewFlow(oauth2.Config{
//		ClientID:     cfg.HubSpotClientID,
//		ClientSecret: cfg.HubSpotClientSecret,
//		RedirectURI:  cfg.HubSpotRedirectURI,
//		AuthURL:      cfg.HubSpotAuthURL,
//		TokenURL:     cfg.HubSpotTokenURL,
//		Scopes:       cfg.Scopes(),
//	}, store, logger)
//
//	authURL, err := flow.Authorize(ctx, "user-1", "org-1")
package oauth2
