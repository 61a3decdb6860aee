package config

// Config file names searched by FindConfig, in order.
var ConfigFileNames = []string{"octbridge.yaml", "octbridge.yml"}

// Reserved interpreter identifiers. Double-underscore names are reserved by
// the interpreter for internal use, so user scripts do not bind them.
const (
	TempVarPrefix = "__arg"
	TempVarSuffix = "__"

	// OutputVarName receives the result of a synthesized single-output call.
	OutputVarName = "__call_result__"
	// OutputVarPrefix names the outputs of a multi-output call:
	// __call_result1__, __call_result2__, ...
	OutputVarPrefix = "__call_result"
)

// DumpMarker is printed right before the variable dump so that output
// produced by the user script is never mistaken for a variable block.
const DumpMarker = "__octbridge_dump__"

// Dump dialects.
const (
	DialectDisplay = "display"
	DialectSave    = "save"
)

// DisplayDirective prints every bound variable in the display dialect.
// Char rows are printed quoted and escaped, logical scalars as true/false,
// everything else through the interpreter's own display routine.
const DisplayDirective = `format long;
printf("%s\n", "` + DumpMarker + `");
for __dump_name__ = who'
  __dump_value__ = eval(__dump_name__{1});
  if ischar(__dump_value__) && rows(__dump_value__) <= 1
    printf("%s = \"%s\"\n\n", __dump_name__{1}, undo_string_escapes(__dump_value__));
  elseif ischar(__dump_value__)
    printf("%s =\n\n", __dump_name__{1});
    printf("\"%s\"\n", cellfun(@undo_string_escapes, cellstr(__dump_value__), "UniformOutput", false){:});
    printf("\n");
  elseif islogical(__dump_value__) && isscalar(__dump_value__)
    printf("%s = %s\n\n", __dump_name__{1}, mat2str(__dump_value__));
  else
    eval(__dump_name__{1});
  endif
endfor
`

// SaveDirective dumps every bound variable in the text save format.
const SaveDirective = `printf("%s\n", "` + DumpMarker + `");
save("-text", "-", "*");
`

// Gateway kinds and script input modes.
const (
	GatewayLocal  = "local"
	GatewayDocker = "docker"

	InputEval  = "eval"
	InputStdin = "stdin"
)

// Defaults applied by setDefaults.
const (
	DefaultBinary       = "octave"
	DefaultDockerBinary = "docker"
	DefaultDockerImage  = "gnuoctave/octave:8.1.0"
	DefaultConcurrency  = 4
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "auto"
	ContainerNamePrefix = "octbridge-"
)

// DefaultArgs keep the interpreter quiet and headless.
var DefaultArgs = []string{"--no-gui", "--quiet", "--no-window-system", "--norc"}
