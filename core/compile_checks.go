package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ AdapterRegistry = (*MetricAdapterRegistry)(nil)
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ RawConfigLoader = FileRawConfigLoader{}
	_ RawConfigLoader = EnvRawConfigLoader{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
