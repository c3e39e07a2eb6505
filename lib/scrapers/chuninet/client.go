package chuninet

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"chunidata-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/chuninet")

var ErrLoginFailed = fmt.Errorf("Failed to login to CHUNITHM-NET.")

// StatusError reports a non-2xx response on a page the scrape cannot
// proceed without.
type StatusError struct {
	Code int
	Path string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on '%s'", e.Code, e.Path)
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	segaId   string
	password string

	delayMin time.Duration
	delayMax time.Duration

	dump     restyutil.FilesystemOutput
	lastBody []byte
}

type ClientOptions struct {
	BaseUrl  string
	SegaId   string
	Password string
	// inter-request pacing window, defaults to 1500ms-2000ms
	DelayMin time.Duration
	DelayMax time.Duration
	// where to write the last fetched page on fatal failure,
	// empty disables the dump
	DumpDir string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, "scrapers/chuninet/http")

	delayMin := opts.DelayMin
	delayMax := opts.DelayMax
	if delayMax <= 0 {
		delayMin = time.Millisecond * 1500
		delayMax = time.Millisecond * 2000
	}

	var dump restyutil.FilesystemOutput
	if opts.DumpDir != "" {
		dump, err = restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		BaseUrl:  baseUrl,
		Http:     client,
		segaId:   opts.SegaId,
		password: opts.Password,
		delayMin: delayMin,
		delayMax: delayMax,
		dump:     dump,
	}
	return c, nil
}

// pace blocks the caller for a random duration inside the configured
// window. every navigation goes through this to keep request timing
// irregular enough to not trip the portal's rate limiting.
func (c *Client) pace() {
	window := int(c.delayMax/time.Millisecond) - int(c.delayMin/time.Millisecond)
	jitter := 0
	if window > 0 {
		var err error
		jitter, err = random.IntRange(0, window)
		if err != nil {
			jitter = window
		}
	}
	time.Sleep(c.delayMin + time.Duration(jitter)*time.Millisecond)
}

// DumpLastPage writes the most recently fetched page body to the
// diagnostic directory. called on fatal failure for postmortems.
func (c *Client) DumpLastPage(name string) {
	if len(c.lastBody) == 0 {
		return
	}
	c.dump.Write(name, c.lastBody)
}

func (c *Client) document(res *resty.Response) (*goquery.Document, error) {
	c.lastBody = res.Body()
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, StatusError{
			Code: res.StatusCode(),
			Path: res.Request.URL,
		}
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// GetDocument navigates to a path on the portal and returns the parsed
// page, pacing beforehand.
func (c *Client) GetDocument(ctx context.Context, path string) (*goquery.Document, error) {
	c.pace()
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, err
	}
	return c.document(res)
}

// PostForm submits a form on the portal and returns the page it lands
// on. used for the same-page category/difficulty selector flow where
// the site exposes a <select> instead of a url.
func (c *Client) PostForm(ctx context.Context, path string, form map[string]string) (*goquery.Document, error) {
	c.pace()
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(path)
	if err != nil {
		return nil, err
	}
	return c.document(res)
}

// Login runs the interactive login sequence once per run: credential
// form fill, submit, then the two-step AIME account selection redirect.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	if c.segaId == "" || c.password == "" {
		return fmt.Errorf("%w: credentials are not configured", ErrLoginFailed)
	}

	doc, err := c.GetDocument(ctx, "/mobile/")
	if err != nil {
		return err
	}

	token := doc.Find("input[name=token]").AttrOr("value", "")
	if token == "" {
		c.DumpLastPage("login-form.html")
		return fmt.Errorf("%w: could not find login form token", ErrLoginFailed)
	}

	doc, err = c.PostForm(ctx, "/mobile/submit/", map[string]string{
		"segaId":       c.segaId,
		"password":     c.password,
		"savePassword": "save_off",
		"token":        token,
	})
	if err != nil {
		return err
	}

	// the first redirect lands on the AIME account selection page,
	// picking the first account triggers the second redirect home
	aimeForm := doc.Find("form[action*=aimeList] input[name=idx]").First()
	if len(aimeForm.Nodes) > 0 {
		aimeToken := doc.Find("input[name=token]").AttrOr("value", token)
		doc, err = c.PostForm(ctx, "/mobile/aimeList/submit/", map[string]string{
			"idx":   aimeForm.AttrOr("value", "0"),
			"token": aimeToken,
		})
		if err != nil {
			return err
		}
	}

	if len(doc.Find("div.player_data_right_block, div.mt_10.player_data").Nodes) == 0 {
		c.DumpLastPage("login-failed.html")
		return ErrLoginFailed
	}

	return nil
}
