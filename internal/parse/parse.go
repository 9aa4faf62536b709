package parse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"matplan/internal/llm"
	"matplan/internal/recipe"
)

// Parser extracts recipe drafts from web pages and photos using an LLM.
type Parser struct {
	textGen llm.TextGenerator
	client  *http.Client
}

// NewParser creates a new recipe parser.
func NewParser(textGen llm.TextGenerator) *Parser {
	return &Parser{
		textGen: textGen,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Result is the outcome of a parse attempt. Extraction failures are data,
// not transport errors: handlers return a Result with a 200 either way.
type Result struct {
	Success bool           `json:"success"`
	Recipe  *recipe.Recipe `json:"recipe,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ResultOf wraps a parse outcome into the Result contract.
func ResultOf(r *recipe.Recipe, err error) Result {
	if err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true, Recipe: r}
}

// extractedRecipe is the structure the model is asked to return.
type extractedRecipe struct {
	Title        string   `json:"title"`
	Servings     float64  `json:"servings"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
}

const extractionPrompt = `
You are a recipe extraction expert. Extract the recipe details from the content below.
Return the result strictly as a JSON object with this structure, and nothing else:
{
  "title": "Recipe Title",
  "servings": 4,
  "description": "One or two sentences describing the dish",
  "ingredients": ["500 g mel", "2 dl melk", ...],
  "instructions": ["Step 1 description", "Step 2 description", ...],
  "tags": ["middag", "vegetar", ...]
}

Keep the ingredient lines exactly as written in the source, including quantities and units.
If no servings count is stated, use 4.
Suggest up to three short lowercase tags describing the dish, in the same language as the recipe.
`

// ParseURL fetches the page, strips it down to text and asks the model to
// extract a recipe draft. The returned recipe is not persisted.
func (p *Parser) ParseURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	content, err := p.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf("%s\nPage content:\n%s\n", extractionPrompt, content)

	response, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	r, err := p.toRecipe(response)
	if err != nil {
		return nil, err
	}
	r.SourceURL = url
	return r, nil
}

// ParseImages extracts a recipe draft from one or more photos, e.g. pages of
// a cookbook.
func (p *Parser) ParseImages(ctx context.Context, images []llm.Image) (*recipe.Recipe, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("at least one image is required")
	}
	for _, img := range images {
		switch img.Format {
		case "jpeg", "png", "webp":
		default:
			return nil, fmt.Errorf("unsupported image format %q", img.Format)
		}
	}

	prompt := extractionPrompt + "\nThe recipe is in the attached photo(s).\n"

	response, err := p.textGen.GenerateFromImages(ctx, prompt, images)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	return p.toRecipe(response)
}

func (p *Parser) toRecipe(response string) (*recipe.Recipe, error) {
	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(cleanJSON(response)), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, response)
	}

	if extracted.Servings <= 0 {
		extracted.Servings = 4
	}

	instructions := make([]recipe.Instruction, 0, len(extracted.Instructions))
	for i, step := range extracted.Instructions {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		instructions = append(instructions, recipe.Instruction{Step: i + 1, Instruction: step})
	}

	r := &recipe.Recipe{
		Title:        extracted.Title,
		Servings:     extracted.Servings,
		Description:  strings.TrimSpace(extracted.Description),
		Ingredients:  extracted.Ingredients,
		Instructions: instructions,
		Tags:         extracted.Tags,
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("extracted recipe is invalid: %w", err)
	}
	return r, nil
}

func (p *Parser) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}

// cleanJSON strips markdown code fences some models wrap around JSON output.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
