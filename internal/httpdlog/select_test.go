package httpdlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConf(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "httpd.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSelectFormat_FormatStrTakesPrecedence(t *testing.T) {
	res, err := SelectFormat(SelectOptions{FormatStr: CommonFormat, FormatType: "combined"}, false)
	require.NoError(t, err)
	assert.Equal(t, "combined", res.FormatTypeLabel)
	assert.Contains(t, columnNames(res.Format.Columns), "status")
}

func TestSelectFormat_BuiltinShortcut(t *testing.T) {
	res, err := SelectFormat(SelectOptions{FormatType: "common"}, false)
	require.NoError(t, err)
	assert.Equal(t, "common", res.FormatTypeLabel)
}

func TestSelectFormat_UnknownFormatType(t *testing.T) {
	_, err := SelectFormat(SelectOptions{FormatType: "nonexistent"}, false)
	require.Error(t, err)
}

func TestSelectFormat_Autodetect(t *testing.T) {
	samples := []string{`127.0.0.1 - frank [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.0" 200 2326`}
	res, err := SelectFormat(SelectOptions{Samples: samples}, false)
	require.NoError(t, err)
	assert.Equal(t, "common", res.FormatTypeLabel)
}

func TestSelectFormat_ConfNickname(t *testing.T) {
	confPath := writeTempConf(t, "LogFormat \"%h %l %u %t \\\"%r\\\" %>s %b\" mycustom\n")
	samples := []string{`127.0.0.1 - frank [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.0" 200 2326`}

	res, err := SelectFormat(SelectOptions{ConfPath: confPath, FormatType: "mycustom", Samples: samples}, false)
	require.NoError(t, err)
	assert.Equal(t, "mycustom", res.FormatTypeLabel)
}

func TestSelectFormat_ConfDefaultPriority(t *testing.T) {
	confPath := writeTempConf(t, "LogFormat \"%h %l %u %t \\\"%r\\\" %>s %b\"\n")
	samples := []string{`127.0.0.1 - frank [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.0" 200 2326`}

	res, err := SelectFormat(SelectOptions{ConfPath: confPath, Samples: samples}, false)
	require.NoError(t, err)
	assert.Equal(t, "default", res.FormatTypeLabel)
}
