package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	// Pagespeed
	&PagespeedTest{},
	&PagespeedMetric{},
	&PagespeedDistribution{},
	&PsSite{},
}
