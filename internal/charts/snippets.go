package charts

// ChartSnippet is an embeddable chart fragment.
// Div holds the root element the chart is drawn into.
// Script holds the <script> block that initializes the chart in that div.
// HTML is Div followed by Script, ready for template substitution.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
	HTML   string
}
