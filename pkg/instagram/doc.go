// Package instagram fetches pages of an account's follower list from
// Instagram's web API by replaying a captured, authenticated request.
//
// Responses are validated strictly with gjson. Anything that does not match
// the expected shape is reported as an error rather than parsed best-effort:
//
//	client := instagram.NewClient(0, instagram.DefaultPageSize, "", log)
//
//	page, err := client.FetchFollowers(ctx, tmpl, "")
//	if err != nil {
//	    switch errors.TypeOf(err) {
//	    case errors.ErrorTypeAuth, errors.ErrorTypeParsing:
//	        // the captured request has expired
//	    case errors.ErrorTypeSchema:
//	        // the endpoint changed shape
//	    }
//	}
//	for !page.Exhausted() {
//	    page, err = client.FetchFollowers(ctx, tmpl, page.NextCursor)
//	    // ...
//	}
package instagram
