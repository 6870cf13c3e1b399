package deviantart

import (
	"context"
	"fmt"
	"net/url"
)

// SignIn authenticates the client's session.
//
// Expired cookies are swept from the jar first, then the login page is
// scraped for its tokens. When the page carries a luToken the site is
// serving the two step flow, where the username and password are
// submitted on separate pages; otherwise both go in a single post.
// Success is judged by the logged-in flag of the final response page.
func (c *Client) SignIn(ctx context.Context, username, password string) error {
	swept := c.jar.SweepExpired()
	if swept > 0 {
		c.logger.DebugWithFields("swept expired cookies", map[string]interface{}{
			"count": swept,
		})
	}

	loginPage, err := c.ScrapePage(ctx, LoginURL)
	if err != nil {
		return fmt.Errorf("failed to scrape login page: %w", err)
	}

	csrfToken := loginPage.loginCSRFToken()
	if csrfToken == "" {
		return &MissingFieldError{Name: "csrfToken"}
	}

	var finalPage *PageState
	if loginPage.LuToken != "" {
		finalPage, err = c.signInTwoStep(ctx, loginPage.LuToken, csrfToken, username, password)
	} else {
		finalPage, err = c.signInSingleStep(ctx, csrfToken, username, password)
	}
	if err != nil {
		return err
	}

	if !finalPage.IsLoggedIn() {
		return ErrSignInFailed
	}

	c.logger.InfoWithFields("signed in", map[string]interface{}{
		"username": username,
	})
	return nil
}

// signInTwoStep submits the username to the step2 endpoint, scrapes the
// password page tokens out of the response, and submits the password.
func (c *Client) signInTwoStep(ctx context.Context, luToken, csrfToken, username, password string) (*PageState, error) {
	body, err := c.postForm(ctx, signInStep2URL, url.Values{
		"referer":      {LoginURL},
		"referer_type": {""},
		"csrf_token":   {csrfToken},
		"challenge":    {"0"},
		"lu_token":     {luToken},
		"username":     {username},
		"remember":     {"on"},
	})
	if err != nil {
		return nil, fmt.Errorf("username step failed: %w", err)
	}

	passwordPage, err := ExtractPageState(body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract password page state: %w", err)
	}

	passwordCSRFToken := passwordPage.loginCSRFToken()
	if passwordCSRFToken == "" {
		return nil, &MissingFieldError{Name: "csrfToken"}
	}
	if passwordPage.LuToken == "" {
		return nil, &MissingFieldError{Name: "luToken"}
	}
	if passwordPage.LuToken2 == "" {
		return nil, &MissingFieldError{Name: "luToken2"}
	}

	// The username field is intentionally blank here; it was bound to
	// the session by the step2 request.
	body, err = c.postForm(ctx, signInURL, url.Values{
		"referer":      {signInURL},
		"referer_type": {""},
		"csrf_token":   {passwordCSRFToken},
		"challenge":    {"0"},
		"lu_token":     {passwordPage.LuToken},
		"lu_token2":    {passwordPage.LuToken2},
		"username":     {""},
		"password":     {password},
		"remember":     {"on"},
	})
	if err != nil {
		return nil, fmt.Errorf("password step failed: %w", err)
	}

	finalPage, err := ExtractPageState(body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract sign-in response state: %w", err)
	}
	return finalPage, nil
}

// signInSingleStep submits both credentials in one post, as the older
// login page generation expects.
func (c *Client) signInSingleStep(ctx context.Context, csrfToken, username, password string) (*PageState, error) {
	body, err := c.postForm(ctx, signInURL, url.Values{
		"referer":    {HomeURL},
		"csrf_token": {csrfToken},
		"username":   {username},
		"password":   {password},
		"challenge":  {"0"},
		"remember":   {"on"},
	})
	if err != nil {
		return nil, fmt.Errorf("sign-in request failed: %w", err)
	}

	finalPage, err := ExtractPageState(body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract sign-in response state: %w", err)
	}
	return finalPage, nil
}
