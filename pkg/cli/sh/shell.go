package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"
	"github.com/caarlos0/env/v6"

	"github.com/robotalks/multisensor/pkg/appconfig"
	"github.com/robotalks/multisensor/pkg/nvs"
)

// Config defines the options of the shell.
type Config struct {
	StoreURL string `env:"MULTISENSOR_STORE"`
}

var defaultConfig = Config{
	StoreURL: "bolt://multisensor-nvs.db",
}

func init() {
	env.Parse(&defaultConfig)
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.StoreURL, "store", defaultConfig.StoreURL, "Config storage URL, empty to start without one.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *Config
	Store  *OpenStore
}

// OpenStore is an opened config storage. Writes go through PowerLoss so
// that an interrupted save can be rehearsed.
type OpenStore struct {
	URL       string
	Partition nvs.Partition
	PowerLoss *nvs.PowerLoss
	Store     *appconfig.Store
	// Draft is edited by the shell and persisted by save.
	Draft appconfig.AppConfig
}

const (
	shellKey       = "$shell"
	unopenedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unopenedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an opened store.
func MustBeOpen(fn func(c *ishell.Context, st *OpenStore)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		st := ShellFrom(c).Store
		if st == nil {
			c.Err(fmt.Errorf("no store opened"))
			return
		}
		fn(c, st)
	}
}

// Print prints v as JSON or with its String form.
func Print(c *ishell.Context, v interface{}) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(v)
}

// OpenURL opens the store at rawURL and loads the draft from it.
func OpenURL(rawURL string) (*OpenStore, error) {
	part, err := nvs.OpenURL(rawURL)
	if err != nil {
		return nil, err
	}
	st := &OpenStore{
		URL:       rawURL,
		Partition: part,
		PowerLoss: nvs.NewPowerLoss(part, -1),
	}
	st.Store = appconfig.NewStore(st.PowerLoss)
	if err = st.Store.Init(); err != nil {
		part.Close()
		return nil, err
	}
	if st.Draft, err = st.Store.Load(); err != nil {
		part.Close()
		return nil, err
	}
	return st, nil
}

// Close closes the underlying partition.
func (st *OpenStore) Close() error {
	return st.Partition.Close()
}

// Open opens the store and makes it current.
func (s *Shell) Open(rawURL string) error {
	st, err := OpenURL(rawURL)
	if err != nil {
		return err
	}
	s.Close()
	s.Store = st
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", rawURL))
	return nil
}

// Close closes current store.
func (s *Shell) Close() {
	if s.Store != nil {
		s.Store.Close()
		s.Store = nil
		s.Shell.SetPrompt(unopenedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Config.StoreURL != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.StoreURL)
		}
		if err := s.Open(s.Config.StoreURL); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.StoreURL, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens a config storage.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "URL",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("URL expected"))
				return
			}
			if err := ShellFrom(c).Open(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current storage.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).Run(flag.Args()...)
}
