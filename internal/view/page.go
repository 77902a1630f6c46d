package view

import (
	"html/template"
	"sync"

	"github.com/xela07ax/sentinel-console/internal/chart"
	"github.com/xela07ax/sentinel-console/internal/domain"
)

// Page — явное состояние страницы дашборда.
// Единственный общий ресурс всех компонентов: запись по принципу last-write-wins,
// каждый регион меняется целиком.
type Page struct {
	mu     sync.RWMutex
	result ResultRegion
	feed   []FeedItem
	train  Button
	alerts []domain.Alert
	table  template.HTML
	charts map[string]chart.Spec

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

// Snapshot хранит копию страницы на момент чтения.
type Snapshot struct {
	Result      ResultRegion          `json:"result"`
	Feed        []FeedItem            `json:"feed"`
	TrainButton Button                `json:"train_button"`
	Alerts      []domain.Alert        `json:"alerts"`
	Charts      map[string]chart.Spec `json:"charts"`
}

func NewPage() *Page {
	p := &Page{
		train:  DefaultTrainButton(),
		feed:   []FeedItem{},
		alerts: []domain.Alert{},
		charts: make(map[string]chart.Spec),
		subs:   make(map[chan struct{}]struct{}),
	}
	p.table = RenderAlertTable(nil)
	return p
}

func (p *Page) SetResult(r ResultRegion) {
	p.mu.Lock()
	p.result = r
	p.mu.Unlock()
	p.notify()
}

func (p *Page) Result() ResultRegion {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}

// ReplaceFeed очищает ленту и заполняет ее заново.
func (p *Page) ReplaceFeed(items []FeedItem) {
	cp := make([]FeedItem, len(items))
	copy(cp, items)

	p.mu.Lock()
	p.feed = cp
	p.mu.Unlock()
	p.notify()
}

func (p *Page) Feed() []FeedItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cp := make([]FeedItem, len(p.feed))
	copy(cp, p.feed)
	return cp
}

// BeginTrain атомарно выключает кнопку. Возвращает false, если кнопка уже выключена.
func (p *Page) BeginTrain() bool {
	p.mu.Lock()
	if p.train.Disabled {
		p.mu.Unlock()
		return false
	}
	p.train = BusyTrainButton()
	p.mu.Unlock()
	p.notify()
	return true
}

func (p *Page) SetTrainButton(b Button) {
	p.mu.Lock()
	p.train = b
	p.mu.Unlock()
	p.notify()
}

func (p *Page) TrainButton() Button {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.train
}

// SetAlerts обновляет таблицу отчета вместе с ее HTML-разметкой.
func (p *Page) SetAlerts(alerts []domain.Alert) {
	cp := make([]domain.Alert, len(alerts))
	copy(cp, alerts)
	table := RenderAlertTable(cp)

	p.mu.Lock()
	p.alerts = cp
	p.table = table
	p.mu.Unlock()
	p.notify()
}

// Table возвращает внешнюю разметку таблицы отчета (outerHTML).
func (p *Page) Table() template.HTML {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// SetChart заменяет график целиком.
func (p *Page) SetChart(id string, spec chart.Spec) {
	p.mu.Lock()
	p.charts[id] = spec
	p.mu.Unlock()
	p.notify()
}

func (p *Page) Chart(id string) (chart.Spec, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	spec, ok := p.charts[id]
	return spec, ok
}

func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		Result:      p.result,
		Feed:        make([]FeedItem, len(p.feed)),
		TrainButton: p.train,
		Alerts:      make([]domain.Alert, len(p.alerts)),
		Charts:      make(map[string]chart.Spec, len(p.charts)),
	}
	copy(s.Feed, p.feed)
	copy(s.Alerts, p.alerts)
	for id, spec := range p.charts {
		s.Charts[id] = spec
	}
	return s
}

// Subscribe возвращает канал уведомлений об изменениях страницы.
// Уведомления схлопываются: медленный подписчик получит одно, а не все.
func (p *Page) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	p.subMu.Lock()
	p.subs[ch] = struct{}{}
	p.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subs, ch)
			p.subMu.Unlock()
		})
	}
}

func (p *Page) notify() {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
