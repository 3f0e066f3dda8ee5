// Package monitoring turns a simulation into an HTTP server that can be
// observed and controlled from outside the process.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"

	"github.com/sarchlab/phasesim/sim/id"
	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/simulation"
	"github.com/sarchlab/phasesim/tracing"
)

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	sim         *simulation.Simulation
	busyTracer  *tracing.BusyTimeTracer
	portNumber  int
	openBrowser bool
	idGenerator id.IDGenerator
	log         *logrus.Entry

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		idGenerator: id.NewIDGenerator(),
		log:         logrus.WithField("module", "monitor"),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		m.log.Warnf("Port number %d is not allowed for the monitoring "+
			"server. Using a random port instead.", portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in a web browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterSimulation sets the simulation that the monitor controls.
func (m *Monitor) RegisterSimulation(s *simulation.Simulation) {
	m.sim = s
}

// RegisterBusyTimeTracer lets the monitor report the busy time of the
// components.
func (m *Monitor) RegisterBusyTimeTracer(t *tracing.BusyTimeTracer) {
	m.busyTracer = t
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGenerator.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// TrackTicks creates a progress bar that counts the completed ticks of the
// registered simulation. The bar is removed when the simulation finishes.
func (m *Monitor) TrackTicks(name string, total uint64) *ProgressBar {
	m.simulationMustBeRegistered()

	bar := m.CreateProgressBar(name, total)
	bar.IncrementInProgress(1)

	m.sim.AddListener(&tickProgress{bar: bar, monitor: m})

	return bar
}

func (m *Monitor) simulationMustBeRegistered() {
	if m.sim == nil {
		panic("no simulation registered with the monitor")
	}
}

// Router returns the handler that serves the monitoring API.
func (m *Monitor) Router() *mux.Router {
	m.simulationMustBeRegistered()

	r := mux.NewRouter()

	r.HandleFunc("/api/state", m.state).Methods(http.MethodGet)
	r.HandleFunc("/api/now", m.now).Methods(http.MethodGet)
	r.HandleFunc("/api/step", m.control(m.sim.Step)).Methods(http.MethodPost)
	r.HandleFunc("/api/run", m.control(m.sim.Run)).Methods(http.MethodPost)
	r.HandleFunc("/api/pause", m.control(m.sim.Pause)).Methods(http.MethodPost)
	r.HandleFunc("/api/finish", m.control(m.sim.Finish)).Methods(http.MethodPost)
	r.HandleFunc("/api/tick_delay", m.tickDelay).Methods(http.MethodGet)
	r.HandleFunc("/api/tick_delay", m.setTickDelay).Methods(http.MethodPost)
	r.HandleFunc("/api/list_components", m.listComponents).Methods(http.MethodGet)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails).
		Methods(http.MethodGet)
	r.HandleFunc("/api/component/{name}/read/{key}", m.readKey).
		Methods(http.MethodGet)
	r.HandleFunc("/api/field/{json}", m.listFieldValue).Methods(http.MethodGet)
	r.HandleFunc("/api/busy_time", m.busyTime).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts the monitor as a web server and returns the address it
// listens on.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.WithError(err).Error("monitoring server stopped")
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url + "/api/state"); err != nil {
			m.log.WithError(err).Warn("cannot open browser")
		}
	}

	return url, nil
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

type stateRsp struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Tick      uint64 `json:"tick"`
	Phase     string `json:"phase"`
	TickDelay int64  `json:"tick_delay_ns"`
	Error     string `json:"error,omitempty"`
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	now := m.sim.Now()

	rsp := stateRsp{
		ID:        m.sim.ID(),
		State:     m.sim.State().String(),
		Tick:      now.Tick,
		Phase:     string(now.Phase),
		TickDelay: m.sim.TickDelay().Nanoseconds(),
	}

	if err := m.sim.Err(); err != nil {
		rsp.Error = err.Error()
	}

	m.writeJSON(w, rsp)
}

type nowRsp struct {
	Tick  uint64 `json:"tick"`
	Phase string `json:"phase"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.sim.Now()

	m.writeJSON(w, nowRsp{Tick: now.Tick, Phase: string(now.Phase)})
}

func (m *Monitor) control(op func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := op()
		if errors.Is(err, simulation.ErrIllegalTransition) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		m.state(w, r)
	}
}

type tickDelayReq struct {
	TickDelay string `json:"tick_delay"`
}

func (m *Monitor) tickDelay(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, tickDelayReq{TickDelay: m.sim.TickDelay().String()})
}

func (m *Monitor) setTickDelay(w http.ResponseWriter, r *http.Request) {
	req := tickDelayReq{}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := time.ParseDuration(req.TickDelay)
	if err != nil || d < 0 {
		http.Error(w, "invalid tick delay "+req.TickDelay, http.StatusBadRequest)
		return
	}

	m.sim.SetTickDelay(d)

	m.tickDelay(w, r)
}

type componentRsp struct {
	Name       string   `json:"name"`
	SourceKeys []string `json:"source_keys"`
	TargetKeys []string `json:"target_keys"`
}

func keyStrings(keys []modeling.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}

	return out
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	comps := m.sim.Components()

	rsp := make([]componentRsp, 0, len(comps))
	for _, c := range comps {
		rsp = append(rsp, componentRsp{
			Name:       c.Name(),
			SourceKeys: keyStrings(c.SourceKeys()),
			TargetKeys: keyStrings(c.TargetKeys()),
		})
	}

	m.writeJSON(w, rsp)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	buf := bytes.NewBuffer(nil)
	if err := serializer.Serialize(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	m.write(w, buf.Bytes())
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	buf := bytes.NewBuffer(nil)
	if err := serializer.Serialize(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	m.write(w, buf.Bytes())
}

type readRsp struct {
	Component string `json:"component"`
	Key       string `json:"key"`
	Present   bool   `json:"present"`
	Value     any    `json:"value,omitempty"`
}

func (m *Monitor) readKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	component := m.findComponentOr404(w, vars["name"])
	if component == nil {
		return
	}

	key := modeling.Key(vars["key"])
	if !component.HasSourceKey(key) {
		http.Error(w, "Key not found", http.StatusNotFound)
		return
	}

	value, present := component.Read(key)

	m.writeJSON(w, readRsp{
		Component: component.Name(),
		Key:       string(key),
		Present:   present,
		Value:     value,
	})
}

func (m *Monitor) busyTime(w http.ResponseWriter, _ *http.Request) {
	if m.busyTracer == nil {
		http.Error(w, "Busy time is not traced", http.StatusNotFound)
		return
	}

	m.writeJSON(w, m.busyTracer.Report())
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) modeling.Component {
	component, found := m.sim.Component(name)
	if !found {
		http.Error(w, "Component not found", http.StatusNotFound)
		return nil
	}

	return component
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second

	if s := r.URL.Query().Get("duration"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			http.Error(w, "invalid duration "+s, http.StatusBadRequest)
			return
		}

		duration = d
	}

	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(duration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	m.write(w, data)
}

func (m *Monitor) write(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		m.log.WithError(err).Debug("cannot write response")
	}
}
