package renderer

import (
	"html/template"
	"io"
	"strings"

	"github.com/lirany1/stress-insight/pkg/display"
	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/themes"
)

// EChartsAssetsHost serves echarts.min.js and the theme scripts
const EChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

var fieldLabels = map[string]string{
	models.FieldAge:             "Age",
	models.FieldGender:          "Gender",
	models.FieldWorkHours:       "Work hours",
	models.FieldScreenTime:      "Screen time",
	models.FieldSleepTime:       "Sleep time",
	models.FieldExerciseFreq:    "Exercise frequency",
	models.FieldMood:            "Mood stability",
	models.FieldFatigue:         "Fatigue level",
	models.FieldHeadache:        "Headache",
	models.FieldWorkLifeBalance: "Work-life balance",
	models.FieldSocialSupport:   "Social support",
}

// FieldView is one form control
type FieldView struct {
	Name    string
	Label   string
	Value   string
	Options []string
}

// PageView is everything the page template needs
type PageView struct {
	Title      string
	SubmitPath string
	Fields     []FieldView
	Surface    *display.Surface
	Notices    []string
	Palette    themes.Palette
	AssetsHost string
}

// NewPageView lays out the form fields in page order. Fields without options
// render as free text inputs.
func NewPageView(surface *display.Surface, options map[string][]string, values models.FormInput, palette themes.Palette) PageView {
	fields := make([]FieldView, 0, len(models.FieldNames))
	for _, name := range models.FieldNames {
		label, ok := fieldLabels[name]
		if !ok {
			label = name
		}
		fields = append(fields, FieldView{
			Name:    name,
			Label:   label,
			Value:   values[name],
			Options: options[name],
		})
	}
	return PageView{
		Title:      "Stress Level Prediction",
		SubmitPath: "/submit",
		Fields:     fields,
		Surface:    surface,
		Palette:    palette,
		AssetsHost: EChartsAssetsHost,
	}
}

var funcMap = template.FuncMap{
	"themeScript": func(host, theme string) string {
		if theme == "" || theme == "white" {
			return ""
		}
		return strings.TrimRight(host, "/") + "/themes/" + theme + ".js"
	},
}

var pageTemplate = template.Must(template.New("page").Funcs(funcMap).Parse(pageTemplateString))

// RenderPage writes the single page: the form, the results surface and any
// pending notices as blocking alerts.
func RenderPage(w io.Writer, view PageView) error {
	return pageTemplate.Execute(w, view)
}

const pageTemplateString = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://cdn.tailwindcss.com"></script>
    <script src="{{.AssetsHost}}echarts.min.js"></script>
    {{with themeScript .AssetsHost .Palette.EChartsTheme}}<script src="{{.}}"></script>{{end}}
    <style>
        .prediction-low { color: #10b981; }
        .prediction-medium { color: #f59e0b; }
        .prediction-high { color: #ef4444; }
        .chart-canvas { width: 100%; height: 360px; }
    </style>
</head>
<body class="bg-gray-50">
    <main class="max-w-5xl mx-auto px-4 py-8">
        <h1 class="text-2xl font-bold text-gray-900 mb-6">{{.Title}}</h1>

        <form id="predictionForm" method="post" action="{{.SubmitPath}}" class="grid grid-cols-1 md:grid-cols-2 gap-4 bg-white p-6 rounded-lg shadow">
            {{range .Fields}}{{$field := .}}
            <div>
                <label for="{{.Name}}" class="block text-sm font-medium text-gray-700">{{.Label}}</label>
                {{if .Options}}
                <select id="{{.Name}}" name="{{.Name}}" class="mt-1 block w-full border rounded p-2">
                    {{range .Options}}<option value="{{.}}"{{if eq . $field.Value}} selected{{end}}>{{.}}</option>{{end}}
                </select>
                {{else}}
                <input id="{{.Name}}" name="{{.Name}}" value="{{.Value}}" class="mt-1 block w-full border rounded p-2">
                {{end}}
            </div>
            {{end}}
            <div class="md:col-span-2">
                <button type="submit" class="px-4 py-2 bg-blue-600 text-white rounded-lg hover:bg-blue-700">Predict Stress Level</button>
            </div>
        </form>

        {{with .Surface}}
        <section id="{{.Results.ID}}" class="mt-8"{{if not .Results.Visible}} style="display: none;"{{end}}>
            <div id="{{.Label.ID}}"><h2 class="text-xl font-semibold {{.Label.Class}}">{{.Label.Text}}</h2></div>
            <div class="grid grid-cols-1 md:grid-cols-2 gap-4 mt-4">
                <div id="{{.FeatureHost.ID}}" class="bg-white p-4 rounded-lg shadow">
                    {{range .FeatureHost.Canvases}}<div id="{{.ID}}" class="chart-canvas"></div>
                    <script>echarts.init(document.getElementById({{.ID}}), {{$.Palette.EChartsTheme}}).setOption({{.Option}});</script>{{end}}
                </div>
                <div id="{{.ProfileHost.ID}}" class="bg-white p-4 rounded-lg shadow">
                    {{range .ProfileHost.Canvases}}<div id="{{.ID}}" class="chart-canvas"></div>
                    <script>echarts.init(document.getElementById({{.ID}}), {{$.Palette.EChartsTheme}}).setOption({{.Option}});</script>{{end}}
                </div>
            </div>
            <div id="{{.Recommendations.ID}}" class="mt-6 bg-white p-6 rounded-lg shadow">
                {{range .Recommendations.Bullets}}<p class="mb-2">&bull; {{.}}</p>{{end}}
            </div>
        </section>
        {{end}}
    </main>
    {{range .Notices}}<script>alert({{.}});</script>{{end}}
</body>
</html>
`
