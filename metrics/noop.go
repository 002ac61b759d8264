// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// nopRegistry is active until prometheus is switched on. Every meter it
// returns is the same value and drops what it is given.
type nopRegistry struct{}

func (nopRegistry) counter(string) CountMeter { return nopMeter{} }
func (nopRegistry) counterVec(string, []string) CountVecMeter { return nopMeter{} }
func (nopRegistry) gauge(string) GaugeMeter { return nopMeter{} }
func (nopRegistry) gaugeVec(string, []string) GaugeVecMeter { return nopMeter{} }
func (nopRegistry) histogram(string, []int64) HistogramMeter { return nopMeter{} }
func (nopRegistry) handler() http.Handler { return nil }
func (nopRegistry) histogramVec(string, []string, []int64) HistogramVecMeter {
	return nopMeter{}
}

type nopMeter struct{}

func (nopMeter) Add(int64) {}
func (nopMeter) Set(int64) {}
func (nopMeter) Observe(int64) {}
func (nopMeter) AddWithLabel(int64, map[string]string) {}
func (nopMeter) SetWithLabel(int64, map[string]string) {}
func (nopMeter) ObserveWithLabels(int64, map[string]string) {}
