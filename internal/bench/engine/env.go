package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	EnvEmbeddingModel   = "CONTEXT_EMBEDDING_MODEL"
	EnvModelDir         = "CONTEXT_MODEL_DIR"
	EnvCUDADevice       = "CONTEXT_CUDA_DEVICE"
	EnvCUDAMemLimitMB   = "CONTEXT_CUDA_MEM_LIMIT_MB"
	EnvProfile          = "CONTEXT_PROFILE"
	EnvORTLibLocation   = "ORT_LIB_LOCATION"
	EnvLDLibraryPath    = "LD_LIBRARY_PATH"
	defaultORTBuildHash = "8BBB8416566A668A240B72A56DBBB82F99F430AF86F64D776D7EBF53E144EFC9"
)

var nvidiaLibPackages = []string{"cublas", "cuda_runtime", "curand", "cufft", "cudnn"}

type EnvOptions struct {
	Model          string
	ModelDir       string
	CUDADevice     *int
	CUDAMemLimitMB *int
	Profile        string
}

// LibraryProbe locates optional runtime libraries on disk.
type LibraryProbe struct {
	Home   string
	Exists func(path string) bool
}

func DefaultLibraryProbe() LibraryProbe {
	home, _ := os.UserHomeDir()
	return LibraryProbe{Home: home, Exists: dirExists}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (p LibraryProbe) exists(path string) bool {
	if p.Exists == nil {
		return dirExists(path)
	}
	return p.Exists(path)
}

func (p LibraryProbe) defaultORTLib() string {
	if p.Home == "" {
		return ""
	}
	return filepath.Join(p.Home, ".cache", "ort.pyke.io", "dfbin", "x86_64-unknown-linux-gnu",
		defaultORTBuildHash, "onnxruntime", "lib")
}

func (p LibraryProbe) nvidiaLibs() []string {
	if p.Home == "" {
		return nil
	}
	libs := make([]string, 0, len(nvidiaLibPackages))
	for _, pkg := range nvidiaLibPackages {
		libs = append(libs, filepath.Join(p.Home, ".local", "lib", "python3.12", "site-packages", "nvidia", pkg, "lib"))
	}
	return libs
}

// Environment is the child-process environment for every tool invocation.
// It is built once before the run loop and never mutated afterwards.
type Environment struct {
	vars map[string]string
}

// BuildEnvironment derives the tool environment from base (os.Environ format).
func BuildEnvironment(base []string, opts EnvOptions, probe LibraryProbe) Environment {
	vars := make(map[string]string, len(base)+8)
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}

	if opts.Model != "" {
		vars[EnvEmbeddingModel] = opts.Model
	}
	if opts.ModelDir != "" {
		vars[EnvModelDir] = opts.ModelDir
	}
	if opts.CUDADevice != nil {
		vars[EnvCUDADevice] = strconv.Itoa(*opts.CUDADevice)
	}
	if opts.CUDAMemLimitMB != nil {
		vars[EnvCUDAMemLimitMB] = strconv.Itoa(*opts.CUDAMemLimitMB)
	}
	if opts.Profile != "" {
		vars[EnvProfile] = opts.Profile
	}

	ortLib, ok := vars[EnvORTLibLocation]
	if !ok {
		ortLib = probe.defaultORTLib()
	}
	if ortLib != "" && probe.exists(ortLib) {
		vars[EnvORTLibLocation] = ortLib
		prependPath(vars, EnvLDLibraryPath, ortLib)
	}

	for _, lib := range probe.nvidiaLibs() {
		if probe.exists(lib) {
			prependPath(vars, EnvLDLibraryPath, lib)
		}
	}

	return Environment{vars: vars}
}

func prependPath(vars map[string]string, key, dir string) {
	if cur := vars[key]; cur != "" {
		vars[key] = dir + string(os.PathListSeparator) + cur
		return
	}
	vars[key] = dir
}

func (e Environment) Get(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Vars returns the environment in os.Environ format, sorted by key. A zero
// Environment returns nil so the child inherits the parent environment.
func (e Environment) Vars() []string {
	if e.vars == nil {
		return nil
	}
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}
