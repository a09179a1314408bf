package emit

import (
	"strings"

	"github.com/albertocavalcante/srcsync/pkg/entry"
	"github.com/albertocavalcante/srcsync/pkg/transform"
)

const (
	// DefaultSentinel is the file always compiled, whatever its category.
	DefaultSentinel = "sc_io.cpp"
	// DefaultResourceFile is the resource script referenced by GUI property sheets.
	DefaultResourceFile = `..\simcqt.rc`
)

const msbuildNamespace = "http://schemas.microsoft.com/developer/msbuild/2003"

// Configuration is a build configuration with its moc preprocessor defines.
type Configuration struct {
	Name    string `toml:"name" json:"name"`
	Defines string `toml:"defines" json:"defines"`
}

const (
	commonWebEngine = "-DUNICODE -DWIN32 -DWIN64 -DSC_USE_WEBENGINE -DQT_VERSION_5 %s -DQT_WIDGETS -DQT_OPENGL_LIB -DQT_WIDGETS_LIB -DQT_NETWORK_LIB -DQT_GUI_LIB -DQT_CORE_LIB -DQT_OPENGL_ES_2 -DQT_OPENGL_ES_2_ANGLE -D_MSC_VER=1800 -D_WIN32 -D_WIN64"
	releaseWebKit   = "-DUNICODE -DSC_USE_WEBKIT -DWIN32 -DWIN64 -DQT_VERSION_5 -DQT_NO_DEBUG -DQT_WEBKITWIDGETS_LIB -DQT_WIDGETS -DQT_MULTIMEDIAWIDGETS_LIB -DQT_OPENGL_LIB  -DQT_QML_LIB -DQT_MULTIMEDIA_LIB -DQT_WEBKIT_LIB -DQT_WIDGETS_LIB -DQT_SENSORS_LIB -DQT_NETWORK_LIB -DQT_GUI_LIB -DQT_CORE_LIB -DQT_OPENGL_ES_2 -DQT_OPENGL_ES_2_ANGLE -D_MSC_VER=1800 -D_WIN32 -D_WIN64"
	debugWebKit     = "-DUNICODE -DWIN32 -DWIN64 -DSC_USE_WEBKIT -DQT_VERSION_5 -DQT_DECLARATIVE_DEBUG -DQT_WIDGETS -DQT_OPENGL_LIB -DQT_WIDGETS_LIB -DQT_NETWORK_LIB -DQT_GUI_LIB -DQT_CORE_LIB -DQT_OPENGL_ES_2 -DQT_OPENGL_ES_2_ANGLE -DQT_WEBKIT_LIB -DQT_WEBKITWIDGETS_LIB -D_MSC_VER=1800 -D_WIN32 -D_WIN64"
)

func webEngine(debug string) string {
	return strings.Replace(commonWebEngine, "%s", debug, 1)
}

// DefaultConfigurations returns the configurations a GUI property sheet
// defines moc flags for, in output order.
func DefaultConfigurations() []Configuration {
	return []Configuration{
		{Name: "Debug-WebKit", Defines: debugWebKit},
		{Name: "Debug-WebEngine", Defines: webEngine("-DQT_DECLARATIVE_DEBUG")},
		{Name: "WebEngine-PGO", Defines: webEngine("-DQT_NO_DEBUG")},
		{Name: "WebEngine", Defines: webEngine("-DQT_NO_DEBUG")},
		{Name: "WebKit", Defines: releaseWebKit},
		{Name: "WebKit-PGO", Defines: releaseWebKit},
	}
}

// MSBuildOptions controls the property sheet layout.
type MSBuildOptions struct {
	// GUI switches headers to moc'd compile items and appends the resource,
	// moc definition and moc build sections.
	GUI bool
	// Sentinel is a file base name that is always emitted as ClCompile.
	Sentinel string
	// ResourceFile is referenced by the GUI resource section.
	ResourceFile string
	// Configurations get one MOC_DEFINES property group each in GUI mode.
	Configurations []Configuration
}

func (o MSBuildOptions) withDefaults() MSBuildOptions {
	if o.Sentinel == "" {
		o.Sentinel = DefaultSentinel
	}
	if o.ResourceFile == "" {
		o.ResourceFile = DefaultResourceFile
	}
	if o.Configurations == nil {
		o.Configurations = DefaultConfigurations()
	}
	return o
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// MSBuild renders a Visual Studio property sheet. The store's paths must
// already use backslash separators.
func MSBuild(h Header, opts MSBuildOptions, s *entry.Store) string {
	opts = opts.withDefaults()

	var sb strings.Builder
	sb.WriteString(h.XML())
	sb.WriteString(`<Project ToolsVersion="4.0" xmlns="` + msbuildNamespace + `">`)
	sb.WriteString("\n\t<ItemGroup>")
	for _, e := range s.Entries() {
		path := attrEscaper.Replace(e.Path)
		switch {
		case e.Base() == opts.Sentinel:
			sb.WriteString("\n\t\t<ClCompile Include=\"" + path + "\" />")
		case e.Category == entry.Header && opts.GUI:
			moc := attrEscaper.Replace(transform.MocSource(e.Path))
			sb.WriteString("\n\t\t<ClCompile Include=\"$(IntDir)" + moc + "\" />")
		case e.Category == entry.Header:
			sb.WriteString("\n\t\t<ClInclude Include=\"" + path + "\" />")
		case e.Category == entry.Source:
			sb.WriteString("\n\t\t<ClCompile Include=\"" + path + "\" />")
		}
	}
	sb.WriteString("\n\t</ItemGroup>")

	if opts.GUI {
		writeGUISections(&sb, opts, s)
	}

	sb.WriteString("\n</Project>\n")
	return sb.String()
}

func writeGUISections(sb *strings.Builder, opts MSBuildOptions, s *entry.Store) {
	sb.WriteString("\n\n\t<!--Resources -->")
	sb.WriteString("\n\t<ItemGroup>")
	sb.WriteString("\n\t\t<ResourceCompile Include=\"" + attrEscaper.Replace(opts.ResourceFile) + "\" />")
	sb.WriteString("\n\t</ItemGroup>")

	sb.WriteString("\n\n\t<!-- Moc Definitions -->")
	for _, c := range opts.Configurations {
		sb.WriteString("\n\t<PropertyGroup Label=\"UserMacros\" Condition=\"'$(Configuration)'=='" + attrEscaper.Replace(c.Name) + "'\">")
		sb.WriteString("\n\t\t<MOC_DEFINES>" + attrEscaper.Replace(c.Defines) + "</MOC_DEFINES>")
		sb.WriteString("\n\t</PropertyGroup>")
	}

	sb.WriteString("\n\n\t<!-- Moc'ing GUI Header files -->")
	sb.WriteString("\n\t<ItemGroup>")
	for _, e := range s.ByCategory(entry.Header) {
		path := attrEscaper.Replace(e.Path)
		sb.WriteString("\n\t\t<CustomBuild Include=\"" + path + "\">")
		sb.WriteString("\n\t\t\t<AdditionalInputs>$(QTDIR)\\bin\\moc.exe</AdditionalInputs>")
		sb.WriteString("\n\t\t\t<Message>Moc%27ing %(Identity)... ( with $(QTDIR)\\bin\\moc.exe )</Message>")
		sb.WriteString("\n\t\t\t<Command>\"$(QTDIR)\\bin\\moc.exe\" $(MOC_DEFINES) -I\"$(QTDIR)\\include\" -I\"$(SolutionDir)engine\" -I\"$(QTDIR)\\mkspecs\\default\" \"%(Identity)\" -o \"$(IntDir)moc_%(Filename).cpp\" </Command>")
		sb.WriteString("\n\t\t\t<AdditionalInputs>Rem;" + path + ";%(AdditionalInputs)</AdditionalInputs>")
		sb.WriteString("\n\t\t\t<Outputs>$(IntDir)\\moc_%(Filename).cpp</Outputs>")
		sb.WriteString("\n\t\t</CustomBuild>")
	}
	sb.WriteString("\n\t</ItemGroup>")
}
